// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/danielhkuo/stackit/models"
)

type TagHandler struct {
	store *Store
}

func NewTagHandler(store *Store) *TagHandler {
	return &TagHandler{store: store}
}

// tagsLocked returns the tags sorted by name, or by question count when
// popular is set.
func (s *Store) tagsLocked(popular bool) []models.Tag {
	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if popular && out[i].QuestionCount != out[j].QuestionCount {
			return out[i].QuestionCount > out[j].QuestionCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// List handles GET /tags/
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	JSONResponse(w, http.StatusOK, page(h.store.tagsLocked(false), skip, limit))
}

// Popular handles GET /tags/popular
func (h *TagHandler) Popular(w http.ResponseWriter, r *http.Request) {
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	JSONResponse(w, http.StatusOK, page(h.store.tagsLocked(true), skip, limit))
}

// Search handles GET /tags/search?q=
func (h *TagHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		ErrorResponse(w, http.StatusUnprocessableEntity, "q is required")
		return
	}
	_, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	var out []models.Tag
	for _, t := range h.store.tagsLocked(false) {
		if containsFold(t.Name, q) {
			out = append(out, t)
		}
	}
	JSONResponse(w, http.StatusOK, page(out, 0, limit))
}

// Create handles POST /tags/
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.store.currentUser(w, r); !ok {
		return
	}

	var req models.CreateTagRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, exists := h.store.tags[name]; exists {
		ErrorResponse(w, http.StatusBadRequest, "Tag already exists")
		return
	}
	t := &models.Tag{ID: h.store.id(), Name: name, Description: req.Description}
	h.store.tags[name] = t
	JSONResponse(w, http.StatusCreated, *t)
}

// Get handles GET /tags/{name}
func (h *TagHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	t, exists := h.store.tags[name]
	if !exists {
		ErrorResponse(w, http.StatusNotFound, "Tag not found")
		return
	}
	JSONResponse(w, http.StatusOK, *t)
}

// Questions handles GET /tags/{name}/questions
func (h *TagHandler) Questions(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, exists := h.store.tags[name]; !exists {
		ErrorResponse(w, http.StatusNotFound, "Tag not found")
		return
	}

	ids := sortedIDs(h.store.questions, func(q *models.Question) bool {
		return slices.Contains(q.Tags, name)
	}, true)
	out := make([]models.Question, 0, len(ids))
	for _, id := range page(ids, skip, limit) {
		out = append(out, h.store.questionLocked(id))
	}
	JSONResponse(w, http.StatusOK, out)
}
