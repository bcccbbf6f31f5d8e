// Package remotetest serves an in-memory users API for tests and demos.
//
// The server speaks the same routes and JSON as the real backend and
// applies the same filter rules, so a remote.Client pointed at it behaves
// as it would in production. Latency and failures can be injected per
// operation.
package remotetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/abelbrown/userdesk/internal/user"
)

// Operation names accepted by FailNext and SetLatency.
const (
	OpList      = "list"
	OpUpdate    = "update"
	OpSetActive = "set_active"
	OpDelete    = "delete"
)

// Server is an in-memory users API. Safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	users    []user.User
	latency  map[string]time.Duration
	failures map[string][]failure
	hits     map[string]int
	lastList []string

	router chi.Router
	srv    *httptest.Server
}

type failure struct {
	status  int
	message string
}

// New returns a handler-only server holding users. Use Start to listen.
func New(users ...user.User) *Server {
	s := &Server{
		users:    slices.Clone(users),
		latency:  make(map[string]time.Duration),
		failures: make(map[string][]failure),
		hits:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", s.list)
		r.Put("/{id}", s.update)
		r.Put("/{id}/active", s.setActive)
		r.Delete("/{id}", s.delete)
	})
	s.router = r
	return s
}

// Start returns a listening server. Callers must Close it.
func Start(users ...user.User) *Server {
	s := New(users...)
	s.srv = httptest.NewServer(s.router)
	return s
}

// URL is the base URL of a started server.
func (s *Server) URL() string {
	if s.srv == nil {
		return ""
	}
	return s.srv.URL
}

// Close stops a started server.
func (s *Server) Close() {
	if s.srv != nil {
		s.srv.Close()
	}
}

// ServeHTTP makes Server usable as a plain handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetLatency delays every future request of op by d.
func (s *Server) SetLatency(op string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency[op] = d
}

// FailNext makes the next request of op answer status with message.
// Calls queue up.
func (s *Server) FailNext(op string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], failure{status: status, message: message})
}

// Hits returns how many requests of op were received.
func (s *Server) Hits(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[op]
}

// LastListQuery returns the raw query string of the latest list request.
func (s *Server) LastListQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lastList) == 0 {
		return ""
	}
	return s.lastList[len(s.lastList)-1]
}

// Users returns a copy of the current user set.
func (s *Server) Users() []user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.users)
}

// enter records the hit, applies latency and reports an injected failure.
func (s *Server) enter(w http.ResponseWriter, r *http.Request, op string) bool {
	s.mu.Lock()
	s.hits[op]++
	if op == OpList {
		s.lastList = append(s.lastList, r.URL.RawQuery)
	}
	delay := s.latency[op]
	var fail *failure
	if q := s.failures[op]; len(q) > 0 {
		fail = &q[0]
		s.failures[op] = q[1:]
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return false
		}
	}
	if fail != nil {
		writeError(w, fail.status, fail.message)
		return false
	}
	return true
}

type pageResponse struct {
	Content       []user.User `json:"content"`
	TotalElements int64       `json:"totalElements"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, r, OpList) {
		return
	}

	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	matched := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		if q.matches(u) {
			matched = append(matched, u)
		}
	}
	s.mu.Unlock()

	slices.SortFunc(matched, func(a, b user.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	resp := pageResponse{Content: []user.User{}, TotalElements: int64(len(matched))}
	if start := q.page * q.limit; start < len(matched) {
		end := min(start+q.limit, len(matched))
		resp.Content = matched[start:end]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, r, OpUpdate) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var fields user.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	if msg := validate(fields); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	// Unknown ids are a silent no-op, as on the real backend.
	s.modify(id, func(u *user.User) {
		u.Name = fields.Name
		u.Surname = fields.Surname
		u.Email = fields.Email
		u.PhoneNumber = fields.PhoneNumber
		u.Active = fields.Active
	})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) setActive(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, r, OpSetActive) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var body struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Request body must be valid JSON")
		return
	}
	s.modify(id, func(u *user.User) { u.Active = body.Active })
	w.WriteHeader(http.StatusOK)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if !s.enter(w, r, OpDelete) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	s.users = slices.DeleteFunc(s.users, func(u user.User) bool { return u.ID == id })
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) modify(id uuid.UUID, change func(*user.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			change(&s.users[i])
			return
		}
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

// validate mirrors the backend's field constraints.
func validate(f user.Fields) string {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return "Name is required"
	case strings.TrimSpace(f.Surname) == "":
		return "Surname is required"
	case strings.TrimSpace(f.Email) == "":
		return "Email is required"
	case strings.TrimSpace(f.PhoneNumber) == "":
		return "Phone number is required"
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return "Invalid email format"
	}
	return ""
}

// query is a parsed list request.
type query struct {
	page, limit int
	id          string
	tokens      []string
	active      *bool
	from, to    *time.Time
}

func parseQuery(r *http.Request) (query, error) {
	v := r.URL.Query()
	q := query{page: 0, limit: 10}

	var err error
	if s := v.Get("pageNumber"); s != "" {
		if q.page, err = strconv.Atoi(s); err != nil || q.page < 0 {
			return q, fmt.Errorf("invalid pageNumber %q", s)
		}
	}
	if s := v.Get("limit"); s != "" {
		if q.limit, err = strconv.Atoi(s); err != nil || q.limit <= 0 {
			return q, fmt.Errorf("invalid limit %q", s)
		}
	}

	q.id = strings.ToLower(v.Get("id"))
	q.tokens = strings.Fields(strings.ToLower(v.Get("name")))

	if s := v.Get("active"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, fmt.Errorf("invalid active %q", s)
		}
		q.active = &b
	}
	if s := v.Get("createdAtFrom"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return q, fmt.Errorf("invalid createdAtFrom %q", s)
		}
		q.from = &t
	}
	if s := v.Get("createdAtTo"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return q, fmt.Errorf("invalid createdAtTo %q", s)
		}
		end := t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		q.to = &end
	}
	return q, nil
}

// matches applies the backend's filter rules: id is a case-insensitive
// substring; one name token matches name or surname, two or more match
// name and surname with the first two tokens; dates are inclusive.
func (q query) matches(u user.User) bool {
	if q.id != "" && !strings.Contains(u.ID.String(), q.id) {
		return false
	}
	name := strings.ToLower(u.Name)
	surname := strings.ToLower(u.Surname)
	switch len(q.tokens) {
	case 0:
	case 1:
		if !strings.Contains(name, q.tokens[0]) && !strings.Contains(surname, q.tokens[0]) {
			return false
		}
	default:
		if !strings.Contains(name, q.tokens[0]) || !strings.Contains(surname, q.tokens[1]) {
			return false
		}
	}
	if q.active != nil && u.Active != *q.active {
		return false
	}
	if q.from != nil && u.CreatedAt.Before(*q.from) {
		return false
	}
	if q.to != nil && u.CreatedAt.After(*q.to) {
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"status":  status,
		"error":   http.StatusText(status),
		"message": message,
	})
}
