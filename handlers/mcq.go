// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"sort"

	"github.com/danielhkuo/stackit/models"
)

// QuizTimeLimit is the default time limit, in seconds, of generated quizzes.
const QuizTimeLimit = 600

type QuizHandler struct {
	store *Store
}

func NewQuizHandler(store *Store) *QuizHandler {
	return &QuizHandler{store: store}
}

// public strips the answer key from a bank question.
func public(q models.QuizQuestion) models.QuizQuestion {
	q.CorrectOption = nil
	q.Explanation = ""
	q.Options = append([]string{}, q.Options...)
	return q
}

// Create handles POST /mcq/quiz
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CreateQuizRequest
	if err := ParseJSONBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	bank := h.store.bank[req.Topic]
	if len(bank) == 0 {
		ErrorResponse(w, http.StatusNotFound, "No questions available for this topic")
		return
	}

	n := min(req.NumQuestions, len(bank))
	questions := make([]models.QuizQuestion, 0, n)
	for _, q := range bank[:n] {
		questions = append(questions, public(q))
	}

	quiz := models.Quiz{
		ID:             h.store.id(),
		Topic:          req.Topic,
		Difficulty:     req.Difficulty,
		TotalQuestions: n,
		TimeLimit:      h.store.quizLimit,
		CreatedAt:      h.store.stamp(),
		Questions:      questions,
	}
	h.store.quizzes[quiz.ID] = &quizRecord{userID: u.ID, quiz: quiz}

	JSONResponse(w, http.StatusCreated, quiz)
}

// quizFor returns quiz id if userID owns it and writes 404 otherwise.
func (h *QuizHandler) quizFor(w http.ResponseWriter, userID, id int64) (*quizRecord, bool) {
	rec, exists := h.store.quizzes[id]
	if !exists || rec.userID != userID {
		ErrorResponse(w, http.StatusNotFound, "Quiz not found")
		return nil, false
	}
	return rec, true
}

// Get handles GET /mcq/quiz/{id}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	rec, ok := h.quizFor(w, u.ID, id)
	if !ok {
		return
	}
	JSONResponse(w, http.StatusOK, rec.quiz)
}

// Questions handles GET /mcq/quiz/{id}/questions
func (h *QuizHandler) Questions(w http.ResponseWriter, r *http.Request) {
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

	rec, ok := h.quizFor(w, u.ID, id)
	if !ok {
		return
	}
	JSONResponse(w, http.StatusOK, rec.quiz.Questions)
}

// Submit handles POST /mcq/quiz/submit
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}

	var sub models.QuizSubmission
	if err := ParseJSONBody(r, &sub); err != nil {
		writeBodyError(w, err)
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	rec, ok := h.quizFor(w, u.ID, sub.QuizID)
	if !ok {
		return
	}
	if rec.quiz.Completed {
		ErrorResponse(w, http.StatusBadRequest, "Quiz already submitted")
		return
	}

	key := make(map[int64]models.QuizQuestion)
	for _, q := range h.store.bank[rec.quiz.Topic] {
		key[q.ID] = q
	}

	result := models.QuizResult{QuizID: rec.quiz.ID, TotalQuestions: rec.quiz.TotalQuestions, Results: []models.QuestionResult{}}
	for _, a := range sub.Answers {
		q, known := key[a.QuestionID]
		if !known || q.CorrectOption == nil {
			continue
		}
		qr := models.QuestionResult{
			QuestionID:     a.QuestionID,
			SelectedOption: a.SelectedOption,
			CorrectOption:  *q.CorrectOption,
			IsCorrect:      a.SelectedOption == *q.CorrectOption,
			Explanation:    q.Explanation,
		}
		if qr.IsCorrect {
			result.Score++
		}
		result.Results = append(result.Results, qr)
	}
	if result.TotalQuestions > 0 {
		result.Percentage = float64(result.Score) * 100 / float64(result.TotalQuestions)
	}

	score := result.Score
	rec.quiz.Score = &score
	rec.quiz.Completed = true
	rec.result = &result

	JSONResponse(w, http.StatusOK, result)
}

// Mine handles GET /mcq/my-quizzes
func (h *QuizHandler) Mine(w http.ResponseWriter, r *http.Request) {
	u, ok := h.store.currentUser(w, r)
	if !ok {
		return
	}
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	ids := sortedIDs(h.store.quizzes, func(rec *quizRecord) bool { return rec.userID == u.ID }, true)
	out := make([]models.Quiz, 0, len(ids))
	for _, id := range page(ids, skip, limit) {
		q := h.store.quizzes[id].quiz
		q.Questions = nil
		out = append(out, q)
	}
	JSONResponse(w, http.StatusOK, out)
}

// Topics handles GET /mcq/topics
func (h *QuizHandler) Topics(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	topics := make([]string, 0, len(h.store.bank))
	for topic := range h.store.bank {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	JSONResponse(w, http.StatusOK, topics)
}

// completedLocked returns the submitted quizzes on topic.
func (s *Store) completedLocked(topic string) []*quizRecord {
	var out []*quizRecord
	for _, id := range sortedIDs(s.quizzes, nil, false) {
		rec := s.quizzes[id]
		if rec.quiz.Topic == topic && rec.result != nil {
			out = append(out, rec)
		}
	}
	return out
}

// TopicStats handles GET /mcq/topics/{topic}/stats
func (h *QuizHandler) TopicStats(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	stats := models.TopicStats{Topic: topic}
	var sum float64
	for _, rec := range h.store.completedLocked(topic) {
		stats.TotalQuizzes++
		sum += rec.result.Percentage
		stats.BestScore = max(stats.BestScore, rec.result.Percentage)
	}
	if stats.TotalQuizzes > 0 {
		stats.AverageScore = sum / float64(stats.TotalQuizzes)
	}
	JSONResponse(w, http.StatusOK, stats)
}

// Leaderboard handles GET /mcq/leaderboard/{topic}
// Each user appears once, with their best attempt.
func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	topic := r.PathValue("topic")
	skip, limit := pageParams(r)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	best := make(map[int64]models.LeaderboardEntry)
	for _, rec := range h.store.completedLocked(topic) {
		entry := models.LeaderboardEntry{
			Username:       h.store.usernameLocked(rec.userID),
			Score:          rec.result.Score,
			TotalQuestions: rec.result.TotalQuestions,
			Percentage:     rec.result.Percentage,
		}
		if prev, seen := best[rec.userID]; !seen || entry.Percentage > prev.Percentage {
			best[rec.userID] = entry
		}
	}

	out := make([]models.LeaderboardEntry, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Username < out[j].Username
	})
	JSONResponse(w, http.StatusOK, page(out, skip, limit))
}
