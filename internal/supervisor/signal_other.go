//go:build !unix

package supervisor

import "os/exec"

func ownProcessGroup(cmd *exec.Cmd) {}

// there is no interrupt for child processes here
func interrupt(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

func kill(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
