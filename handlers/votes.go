// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/stackit/models"
)

type VoteHandler struct {
	store *Store
}

func NewVoteHandler(store *Store) *VoteHandler {
	return &VoteHandler{store: store}
}

// Cast handles POST /votes/
// Casting the value already held removes the vote; any other value replaces it.
func (h *VoteHandler) Cast(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
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

	key := voteKey{answerID: a.ID, userID: u.ID}
	value := req.Value
	msg := "Vote recorded"
	if prev, voted := h.store.votes[key]; voted && prev == value {
		delete(h.store.votes, key)
		value = models.VoteNone
		msg = "Vote removed"
	} else {
		h.store.votes[key] = value
		if !voted && a.UserID != u.ID {
			related := a.QuestionID
			h.store.notifyLocked(a.UserID, models.NotificationVote, u.Username+" voted on your answer", &related)
		}
	}

	JSONResponse(w, http.StatusOK, h.store.voteResultLocked(a.ID, value, msg))
}

// Remove handles DELETE /votes/answer/{id}
func (h *VoteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	key := voteKey{answerID: answerID, userID: u.ID}
	if _, voted := h.store.votes[key]; !voted {
		ErrorResponse(w, http.StatusNotFound, "Vote not found")
		return
	}
	delete(h.store.votes, key)

	JSONResponse(w, http.StatusOK, h.store.voteResultLocked(answerID, models.VoteNone, "Vote removed"))
}

// Stats handles GET /votes/answer/{id}/stats
func (h *VoteHandler) Stats(w http.ResponseWriter, r *http.Request) {
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, authed := h.store.optionalUser(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	if _, exists := h.store.answers[answerID]; !exists {
		ErrorResponse(w, http.StatusNotFound, "Answer not found")
		return
	}

	stats := models.VoteStats{AnswerID: answerID, TotalScore: h.store.reportedScoreLocked(answerID)}
	for k, v := range h.store.votes {
		if k.answerID != answerID {
			continue
		}
		if v > 0 {
			stats.Upvotes++
		} else {
			stats.Downvotes++
		}
	}
	if authed {
		if v, voted := h.store.votes[voteKey{answerID: answerID, userID: u.ID}]; voted {
			stats.UserVote = &v
		}
	}

	JSONResponse(w, http.StatusOK, stats)
}

// MyVote handles GET /votes/answer/{id}/my-vote
// It answers null when the user has not voted.
func (h *VoteHandler) MyVote(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	answerID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	v, voted := h.store.votes[voteKey{answerID: answerID, userID: u.ID}]
	if !voted {
		JSONResponse(w, http.StatusOK, nil)
		return
	}
	JSONResponse(w, http.StatusOK, models.Vote{AnswerID: answerID, UserID: u.ID, Value: v})
}

func (s *Store) voteResultLocked(answerID int64, value int, msg string) models.VoteResult {
	res := models.VoteResult{AnswerID: answerID, Value: value, Message: msg}
	if !s.omitScore {
		score := s.reportedScoreLocked(answerID)
		res.TotalScore = &score
	}
	return res
}
