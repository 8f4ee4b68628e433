package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/naveenspark/taskflow/pkg/domain"
)

func withUser(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, uid)
}

func userID(r *http.Request) int64 {
	uid, _ := r.Context().Value(ctxKey{}).(int64)
	return uid
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON request")
		return false
	}
	return true
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[req.Email]
	if !ok || acc.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: s.issueLocked(acc.user.ID), Email: acc.user.Email})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	if blank(req.Email) || blank(req.Password) || blank(req.FirstName) || blank(req.LastName) {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusConflict, "Email is already in use")
		return
	}
	u := s.addUserLocked(req.FirstName, req.LastName, req.Email, req.Password)
	writeJSON(w, http.StatusOK, domain.AuthResponse{Token: s.issueLocked(u.ID), Email: u.Email})
}

func (s *Server) accountByIDLocked(uid int64) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == uid {
			return acc
		}
	}
	return nil
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByIDLocked(userID(r))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if blank(req.FirstName) || blank(req.LastName) {
		writeError(w, http.StatusBadRequest, "First name and last name are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByIDLocked(userID(r))
	if acc == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	acc.user.FirstName, acc.user.LastName = req.FirstName, req.LastName
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []domain.Project
	for _, p := range s.projects {
		if p.owner == uid {
			list = append(list, s.withAggregatesLocked(p))
		}
	}
	// newest first
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	writeJSON(w, http.StatusOK, paginate(list, queryInt(r, "page", 0), queryInt(r, "size", 10)))
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req domain.ProjectRequest
	if !decode(w, r, &req) {
		return
	}
	if blank(req.Title) {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := &project{
		Project: domain.Project{
			ID:          s.nextID,
			Title:       req.Title,
			Description: req.Description,
			CreatedAt:   domain.DateTime{Time: s.now().Truncate(time.Second)},
		},
		owner: userID(r),
	}
	s.projects[p.ID] = p
	writeJSON(w, http.StatusCreated, s.withAggregatesLocked(p))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ownedProjectLocked(w, pathID(r), userID(r))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.withAggregatesLocked(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req domain.ProjectRequest
	if !decode(w, r, &req) {
		return
	}
	if blank(req.Title) {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ownedProjectLocked(w, pathID(r), userID(r))
	if !ok {
		return
	}
	p.Title, p.Description = req.Title, req.Description
	writeJSON(w, http.StatusOK, s.withAggregatesLocked(p))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ownedProjectLocked(w, pathID(r), userID(r))
	if !ok {
		return
	}
	for id, t := range s.tasks {
		if t.ProjectID == p.ID {
			delete(s.tasks, id)
		}
	}
	delete(s.projects, p.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ownedProjectLocked(w, pathID(r), userID(r))
	if !ok {
		return
	}
	q := r.URL.Query()
	var status domain.TaskStatus
	if raw := q.Get("status"); raw != "" {
		status = domain.TaskStatus(raw)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid status: "+raw)
			return
		}
	}

	var list []domain.Task
	for _, t := range s.tasks {
		if t.ProjectID != p.ID || (status != "" && t.Status != status) {
			continue
		}
		list = append(list, *t)
	}
	sortTasks(list, q.Get("sortTitle") == "sort")
	writeJSON(w, http.StatusOK, paginate(list, queryInt(r, "page", 0), queryInt(r, "size", 10)))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if !decode(w, r, &req) {
		return
	}
	if blank(req.Title) {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.DueDate.IsZero() {
		writeError(w, http.StatusBadRequest, "Due date is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.ownedProjectLocked(w, pathID(r), userID(r))
	if !ok {
		return
	}
	s.nextID++
	t := &domain.Task{
		ID:          s.nextID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      domain.StatusPending,
		ProjectID:   p.ID,
	}
	s.tasks[t.ID] = t
	writeJSON(w, http.StatusOK, *t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateTaskRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Status != nil && !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status: "+string(*req.Status))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ownedTaskLocked(w, pathID(r), userID(r))
	if !ok {
		return
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	writeJSON(w, http.StatusOK, *t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ownedTaskLocked(w, pathID(r), userID(r))
	if !ok {
		return
	}
	delete(s.tasks, t.ID)
	w.WriteHeader(http.StatusNoContent)
}
