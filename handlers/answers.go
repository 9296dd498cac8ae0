// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/stackit/models"
)

type AnswerHandler struct {
	store *Store
}

func NewAnswerHandler(store *Store) *AnswerHandler {
	return &AnswerHandler{store: store}
}

// ListForQuestion handles GET /answers/question/{id}
func (h *AnswerHandler) ListForQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, exists := h.store.questions[questionID]; !exists {
		ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}

	ids := sortedIDs(h.store.answers, func(a *models.Answer) bool { return a.QuestionID == questionID }, false)
	out := make([]models.Answer, 0, len(ids))
	for _, id := range page(ids, skip, limit) {
		out = append(out, h.store.answerLocked(id))
	}
	JSONResponse(w, http.StatusOK, out)
}

// Get handles GET /answers/{id}
func (h *AnswerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, exists := h.store.answers[id]; !exists {
		ErrorResponse(w, http.StatusNotFound, "Answer not found")
		return
	}
	JSONResponse(w, http.StatusOK, h.store.answerLocked(id))
}

// Create handles POST /answers/
func (h *AnswerHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateAnswerRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	a, ok := h.store.addAnswerLocked(req.QuestionID, u.ID, req.Description)
	if !ok {
		ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	JSONResponse(w, http.StatusCreated, a)
}

// Update handles PUT /answers/{id}
func (h *AnswerHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateAnswerRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	a, exists := h.store.answers[id]
	if !exists {
		ErrorResponse(w, http.StatusNotFound, "Answer not found")
		return
	}
	if a.UserID != u.ID {
		ErrorResponse(w, http.StatusForbidden, "Not authorized to update this answer")
		return
	}

	a.Description = req.Description
	updated := h.store.stamp()
	a.UpdatedAt = &updated
	JSONResponse(w, http.StatusOK, h.store.answerLocked(id))
}

// Delete handles DELETE /answers/{id}
func (h *AnswerHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	a, exists := h.store.answers[id]
	if !exists {
		ErrorResponse(w, http.StatusNotFound, "Answer not found")
		return
	}
	if a.UserID != u.ID {
		ErrorResponse(w, http.StatusForbidden, "Not authorized to delete this answer")
		return
	}

	if q, ok := h.store.questions[a.QuestionID]; ok && q.AnswerCount > 0 {
		q.AnswerCount--
	}
	for k := range h.store.votes {
		if k.answerID == id {
			delete(h.store.votes, k)
		}
	}
	delete(h.store.answers, id)

	JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Answer deleted successfully"})
}

// ByUser handles GET /answers/user/{id}
func (h *AnswerHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ids := sortedIDs(h.store.answers, func(a *models.Answer) bool { return a.UserID == userID }, true)
	out := make([]models.Answer, 0, len(ids))
	for _, id := range page(ids, skip, limit) {
		out = append(out, h.store.answerLocked(id))
	}
	JSONResponse(w, http.StatusOK, out)
}

// Accept handles POST /answers/accept
func (h *AnswerHandler) Accept(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	var req models.AcceptAnswerRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	a, exists := h.store.answers[req.AnswerID]
	if !exists {
		ErrorResponse(w, http.StatusNotFound, "Answer not found")
		return
	}
	q := h.store.questions[a.QuestionID]
	if q.UserID != u.ID {
		ErrorResponse(w, http.StatusForbidden, "Only the question owner can accept answers")
		return
	}
	if q.AcceptedAnswerID != nil {
		ErrorResponse(w, http.StatusBadRequest, "Question already has an accepted answer")
		return
	}

	accepted := a.ID
	q.AcceptedAnswerID = &accepted
	a.IsAccepted = true
	if a.UserID != u.ID {
		related := q.ID
		h.store.notifyLocked(a.UserID, models.NotificationAnswer, "Your answer was accepted: "+q.Title, &related)
	}

	JSONResponse(w, http.StatusOK, h.store.answerLocked(a.ID))
}
