// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"slices"

	"github.com/danielhkuo/stackit/models"
)

type QuestionHandler struct {
	store *Store
}

func NewQuestionHandler(store *Store) *QuestionHandler {
	return &QuestionHandler{store: store}
}

// List handles GET /questions/?skip&limit&search&tags
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)
	search := r.URL.Query().Get("search")
	tags := r.URL.Query()["tags"]

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ids := sortedIDs(h.store.questions, func(q *models.Question) bool {
		if search != "" && !containsFold(q.Title, search) && !containsFold(q.Description, search) {
			return false
		}
		for _, tag := range tags {
			if !slices.Contains(q.Tags, tag) {
				return false
			}
		}
		return true
	}, true)

	out := make([]models.Question, 0, len(ids))
	for _, id := range page(ids, skip, limit) {
		out = append(out, h.store.questionLocked(id))
	}
	JSONResponse(w, http.StatusOK, out)
}

// Get handles GET /questions/{id}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, exists := h.store.questions[id]; !exists {
		ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	JSONResponse(w, http.StatusOK, h.store.questionLocked(id))
}

// Create handles POST /questions/
func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateQuestionRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	q := h.store.addQuestionLocked(u.ID, req.Title, req.Description, req.Tags)
	JSONResponse(w, http.StatusCreated, q)
}

// Update handles PUT /questions/{id}
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateQuestionRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	q, exists := h.store.questions[id]
	if !exists {
		ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if q.UserID != u.ID {
		ErrorResponse(w, http.StatusForbidden, "Not authorized to update this question")
		return
	}

	if req.Title != nil {
		q.Title = *req.Title
	}
	if req.Description != nil {
		q.Description = *req.Description
	}
	if req.Tags != nil {
		q.Tags = append([]string{}, req.Tags...)
	}
	updated := h.store.stamp()
	q.UpdatedAt = &updated

	JSONResponse(w, http.StatusOK, h.store.questionLocked(id))
}

// Delete handles DELETE /questions/{id}
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	q, exists := h.store.questions[id]
	if !exists {
		ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if q.UserID != u.ID {
		ErrorResponse(w, http.StatusForbidden, "Not authorized to delete this question")
		return
	}

	for aid, a := range h.store.answers {
		if a.QuestionID == id {
			delete(h.store.answers, aid)
		}
	}
	for _, name := range q.Tags {
		if t, ok := h.store.tags[name]; ok && t.QuestionCount > 0 {
			t.QuestionCount--
		}
	}
	delete(h.store.questions, id)

	JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Question deleted successfully"})
}

// ByUser handles GET /questions/user/{id}
func (h *QuestionHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ids := sortedIDs(h.store.questions, func(q *models.Question) bool { return q.UserID == userID }, true)
	out := make([]models.Question, 0, len(ids))
	for _, id := range page(ids, skip, limit) {
		out = append(out, h.store.questionLocked(id))
	}
	JSONResponse(w, http.StatusOK, out)
}
