// Package remotetest provides an in-memory Remote Data Service for tests.
package remotetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tgienger/kairo/internal/models"
)

// Request is one call the server received
type Request struct {
	Method    string
	Path      string
	Route     string // mux path template, e.g. /{kind}/{id}
	UserID    string
	Body      []byte
	RequestID string
}

// ChatFunc answers a chat request with a status code and a JSON body
type ChatFunc func(models.ChatRequest) (int, any)

type failure struct {
	status int
	body   string
	once   bool
}

// collection describes one entity family
type collection struct {
	key   string // list envelope key
	idKey string
	items map[string]map[string]any
}

// Server is a fake Remote Data Service backed by maps
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string]*collection
	archived    []map[string]any
	archiveOff  bool
	requests    []Request
	failures    map[string]failure
	chat        ChatFunc
	now         func() time.Time
}

// New starts a server. Call Close when done.
func New() *Server {
	s := &Server{
		collections: map[string]*collection{
			"tasks":   {key: "tasks", idKey: "task_id", items: map[string]map[string]any{}},
			"events":  {key: "events", idKey: "event_id", items: map[string]map[string]any{}},
			"courses": {key: "courses", idKey: "course_id", items: map[string]map[string]any{}},
		},
		failures: map[string]failure{},
		now:      time.Now,
		chat: func(req models.ChatRequest) (int, any) {
			return http.StatusOK, models.ChatReply{Response: "You said: " + req.Message}
		},
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/tasks/archived", s.listArchived).Methods(http.MethodGet)
	r.HandleFunc("/tasks/complete/{id}", s.complete).Methods(http.MethodPost)
	r.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)

	kinds := "/{kind:tasks|events|courses}"
	r.HandleFunc(kinds, s.list).Methods(http.MethodGet)
	r.HandleFunc(kinds, s.create).Methods(http.MethodPost)
	r.HandleFunc(kinds+"/{id}", s.update).Methods(http.MethodPut)
	r.HandleFunc(kinds+"/{id}", s.remove).Methods(http.MethodDelete)
	return r
}

// record logs every routed request and applies injected failures
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		userID := r.URL.Query().Get("user_id")
		if userID == "" && len(body) > 0 {
			var ref models.UserRef
			if json.Unmarshal(body, &ref) == nil {
				userID = ref.UserID
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Route:     route,
			UserID:    userID,
			Body:      body,
			RequestID: r.Header.Get("X-Request-ID"),
		})
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		if failing && f.once {
			delete(s.failures, r.Method+" "+r.URL.Path)
		}
		s.mu.Unlock()

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every METHOD path request answer status with body
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

// FailOnce is Fail for a single request
func (s *Server) FailOnce(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body, once: true}
}

// Heal removes all injected failures
func (s *Server) Heal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
}

// DisableArchive makes the archive endpoint answer 404
func (s *Server) DisableArchive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archiveOff = true
}

// SetChat replaces the chat responder
func (s *Server) SetChat(fn ChatFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = fn
}

// SetNow fixes the clock used for created_at and updated_at
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Requests returns a copy of every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and route template.
// An empty method or route matches anything.
func (s *Server) Count(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && (route == "" || r.Route == route || r.Path == route) {
			n++
		}
	}
	return n
}

// Reset forgets recorded requests
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Seed stores record in kind ("tasks", "events", "courses") and returns
// its id, generating one when the record has none.
func (s *Server) Seed(kind string, record map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.collections[kind]
	id, _ := record[c.idKey].(string)
	if id == "" {
		id = newID(kind)
		record[c.idKey] = id
	}
	c.items[id] = record
	return id
}

// SeedArchived adds an archived task
func (s *Server) SeedArchived(record map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archived = append(s.archived, record)
}

// Get returns a stored record
func (s *Server) Get(kind, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.collections[kind].items[id]
	return r, ok
}

// Len returns the number of records stored for kind
func (s *Server) Len(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collections[kind].items)
}

func newID(kind string) string {
	return strings.TrimSuffix(kind, "s") + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (s *Server) stamp() string {
	return s.now().Format("2006-01-02T15:04:05")
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	s.mu.Lock()
	c := s.collections[kind]
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		items = append(items, c.items[id])
	}
	defer s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{c.key: items})
}

func (s *Server) listArchived(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	off := s.archiveOff
	items := append([]map[string]any{}, s.archived...)
	s.mu.Unlock()

	if off {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archived_tasks": items})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	var record map[string]any
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if uid, _ := record["user_id"].(string); uid == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "User ID is required"})
		return
	}

	s.mu.Lock()
	c := s.collections[kind]
	id := newID(kind)
	record[c.idKey] = id
	record["created_at"] = s.stamp()
	record["updated_at"] = s.stamp()
	c.items[id] = record
	s.mu.Unlock()

	singular := strings.TrimSuffix(kind, "s")
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": strings.ToUpper(singular[:1]) + singular[1:] + " created successfully",
		c.idKey:   id,
	})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	s.mu.Lock()
	c := s.collections[vars["kind"]]
	record, ok := c.items[vars["id"]]
	if ok {
		for k, v := range patch {
			record[k] = v
		}
		record["updated_at"] = s.stamp()
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Updated successfully"})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	c := s.collections[vars["kind"]]
	_, ok := c.items[vars["id"]]
	delete(c.items, vars["id"])
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	record, ok := s.collections["tasks"].items[id]
	if ok {
		record["status"] = models.StatusCompleted
		record["updated_at"] = s.stamp()
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Task not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task marked as completed"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	s.mu.Lock()
	fn := s.chat
	s.mu.Unlock()

	status, body := fn(req)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
