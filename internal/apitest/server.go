// Package apitest runs an in-memory TaskFlow API for tests. It implements
// the same routes, pagination, filtering, ordering and error envelope as
// the real server, with aggregates computed on every read.
package apitest

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/naveenspark/taskflow/pkg/domain"
)

// Request is one call the server received.
type Request struct {
	Method string
	Path   string // relative to the API root, e.g. "/projects/3"
	Query  url.Values
	Auth   string
}

type account struct {
	user     domain.User
	password string
}

type project struct {
	domain.Project
	owner int64
}

// Server is a fake TaskFlow API.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int64
	accounts map[string]*account // by email
	tokens   map[string]int64    // token -> user id
	projects map[int64]*project
	tasks    map[int64]*domain.Task
	requests []Request
	now      func() time.Time
}

// New starts a fake API. It is closed when the test ends.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]int64),
		projects: make(map[int64]*project),
		tasks:    make(map[int64]*domain.Task),
		now:      time.Now,
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to client.New.
func (s *Server) BaseURL() string {
	return s.URL + "/api"
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.record)

	api.HandleFunc("/auth/login", s.handleLogin).Methods("POST")
	api.HandleFunc("/auth/register", s.handleRegister).Methods("POST")

	authed := api.NewRoute().Subrouter()
	authed.Use(s.authenticate)
	authed.HandleFunc("/users/me", s.handleGetMe).Methods("GET")
	authed.HandleFunc("/users/me", s.handleUpdateMe).Methods("PATCH")
	authed.HandleFunc("/projects", s.handleListProjects).Methods("GET")
	authed.HandleFunc("/projects", s.handleCreateProject).Methods("POST")
	authed.HandleFunc("/projects/{id:[0-9]+}", s.handleGetProject).Methods("GET")
	authed.HandleFunc("/projects/{id:[0-9]+}", s.handleUpdateProject).Methods("PUT")
	authed.HandleFunc("/projects/{id:[0-9]+}", s.handleDeleteProject).Methods("DELETE")
	authed.HandleFunc("/tasks/project/{id:[0-9]+}", s.handleListTasks).Methods("GET")
	authed.HandleFunc("/tasks/project/{id:[0-9]+}", s.handleCreateTask).Methods("POST")
	authed.HandleFunc("/tasks/{id:[0-9]+}", s.handleUpdateTask).Methods("PATCH")
	authed.HandleFunc("/tasks/{id:[0-9]+}", s.handleDeleteTask).Methods("DELETE")
	return r
}

// --- Seeding ---

// AddUser creates an account and returns it.
func (s *Server) AddUser(first, last, email, password string) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(first, last, email, password)
}

func (s *Server) addUserLocked(first, last, email, password string) domain.User {
	s.nextID++
	u := domain.User{ID: s.nextID, Email: email, FirstName: first, LastName: last}
	s.accounts[email] = &account{user: u, password: password}
	return u
}

// IssueToken returns a fresh valid token for email.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(s.accounts[email].user.ID)
}

func (s *Server) issueLocked(userID int64) string {
	tok := uuid.NewString()
	s.tokens[tok] = userID
	return tok
}

// RevokeTokens invalidates every issued token.
func (s *Server) RevokeTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]int64)
}

// AddProject creates a project owned by email.
func (s *Server) AddProject(email, title, description string) domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := &project{
		Project: domain.Project{
			ID:          s.nextID,
			Title:       title,
			Description: description,
			CreatedAt:   domain.DateTime{Time: s.now().Truncate(time.Second)},
		},
		owner: s.accounts[email].user.ID,
	}
	s.projects[p.ID] = p
	return s.withAggregatesLocked(p)
}

// AddTask creates a task in projectID.
func (s *Server) AddTask(projectID int64, title string, due domain.Date, status domain.TaskStatus) domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := &domain.Task{ID: s.nextID, Title: title, DueDate: due, Status: status, ProjectID: projectID}
	s.tasks[t.ID] = t
	return *t
}

// Project returns the project with its current aggregates.
func (s *Server) Project(id int64) (domain.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return domain.Project{}, false
	}
	return s.withAggregatesLocked(p), true
}

// Task returns the task with id.
func (s *Server) Task(id int64) (domain.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, false
	}
	return *t, true
}

// --- Inspection ---

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request matching method and path.
func (s *Server) Last(method, path string) (Request, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Request{}, false
}

// ResetRequests forgets the recorded requests.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// --- Middleware ---

type ctxKey struct{}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, "/api"),
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		uid, valid := s.tokens[tok]
		s.mu.Unlock()
		if !ok || !valid {
			writeError(w, http.StatusUnauthorized, "Full authentication is required to access this resource")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), uid)))
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"status":    status,
		"message":   msg,
		"timestamp": time.Now().UnixMilli(),
	})
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return def
}

func paginate[T any](items []T, page, size int) domain.Page[T] {
	if size <= 0 {
		size = 10
	}
	total := len(items)
	pages := int(math.Ceil(float64(total) / float64(size)))
	start := min(page*size, total)
	end := min(start+size, total)
	content := items[start:end]
	if content == nil {
		content = []T{}
	}
	return domain.Page[T]{
		Content:          content,
		Number:           page,
		Size:             size,
		TotalPages:       pages,
		TotalElements:    total,
		NumberOfElements: len(content),
		First:            page == 0,
		Last:             page >= pages-1,
		Empty:            len(content) == 0,
	}
}

func (s *Server) withAggregatesLocked(p *project) domain.Project {
	out := p.Project
	out.TotalTasks, out.CompletedTasks = 0, 0
	for _, t := range s.tasks {
		if t.ProjectID != p.ID {
			continue
		}
		out.TotalTasks++
		if t.Status == domain.StatusCompleted {
			out.CompletedTasks++
		}
	}
	out.ProgressPercentage = 0
	if out.TotalTasks > 0 {
		pct := float64(out.CompletedTasks) / float64(out.TotalTasks) * 100
		out.ProgressPercentage = math.Round(pct*100) / 100
	}
	return out
}

// ownedProjectLocked returns the project if it exists and uid owns it,
// writing the error response otherwise.
func (s *Server) ownedProjectLocked(w http.ResponseWriter, id, uid int64) (*project, bool) {
	p, ok := s.projects[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Project not found with id: %d", id))
		return nil, false
	}
	if p.owner != uid {
		writeError(w, http.StatusForbidden, "You do not have permission to access this project")
		return nil, false
	}
	return p, true
}

func (s *Server) ownedTaskLocked(w http.ResponseWriter, id, uid int64) (*domain.Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Task not found with id: %d", id))
		return nil, false
	}
	if p := s.projects[t.ProjectID]; p == nil || p.owner != uid {
		writeError(w, http.StatusForbidden, "You do not have permission to modify this task")
		return nil, false
	}
	return t, true
}

func sortTasks(tasks []domain.Task, byTitle bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if byTitle {
			return tasks[i].Title < tasks[j].Title
		}
		if !tasks[i].DueDate.Equal(tasks[j].DueDate.Time) {
			return tasks[i].DueDate.Before(tasks[j].DueDate.Time)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
