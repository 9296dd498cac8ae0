// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/stackit/models"
)

type userRecord struct {
	user     models.User
	password string
}

type voteKey struct {
	answerID int64
	userID   int64
}

type notificationRecord struct {
	userID int64
	n      models.Notification
}

type quizRecord struct {
	userID int64
	quiz   models.Quiz
	result *models.QuizResult
}

// Store is the in-memory state behind the handlers. All access goes through
// its mutex; handlers lock it for the whole request.
type Store struct {
	mu sync.Mutex

	secret []byte
	now    func() time.Time
	nextID int64

	users         map[int64]*userRecord
	questions     map[int64]*models.Question
	answers       map[int64]*models.Answer
	votes         map[voteKey]int
	notifications map[int64]*notificationRecord
	tags          map[string]*models.Tag
	quizzes       map[int64]*quizRecord
	bank          map[string][]models.QuizQuestion

	// Test controls
	scoreOverride map[int64]int
	omitScore     bool
	quizLimit     int
}

// NewStore creates an empty store signing tokens with secret.
func NewStore(secret []byte) *Store {
	return &Store{
		secret:        secret,
		now:           time.Now,
		users:         make(map[int64]*userRecord),
		questions:     make(map[int64]*models.Question),
		answers:       make(map[int64]*models.Answer),
		votes:         make(map[voteKey]int),
		notifications: make(map[int64]*notificationRecord),
		tags:          make(map[string]*models.Tag),
		quizzes:       make(map[int64]*quizRecord),
		bank:          make(map[string][]models.QuizQuestion),
		scoreOverride: make(map[int64]int),
		quizLimit:     QuizTimeLimit,
	}
}

// Secret returns the token signing key.
func (s *Store) Secret() []byte {
	return s.secret
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) stamp() models.Timestamp {
	return models.NewTimestamp(s.now().UTC())
}

// AddUser creates a user and returns it.
func (s *Store) AddUser(username, email, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, password)
}

func (s *Store) addUserLocked(username, email, password string) models.User {
	u := models.User{ID: s.id(), Username: username, Email: email, CreatedAt: s.stamp()}
	s.users[u.ID] = &userRecord{user: u, password: password}
	return u
}

func (s *Store) userByName(username string) (*userRecord, bool) {
	for _, u := range s.users {
		if u.user.Username == username {
			return u, true
		}
	}
	return nil, false
}

// AddQuestion creates a question owned by userID.
func (s *Store) AddQuestion(userID int64, title, description string, tags ...string) models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addQuestionLocked(userID, title, description, tags)
}

func (s *Store) addQuestionLocked(userID int64, title, description string, tags []string) models.Question {
	q := &models.Question{
		ID:          s.id(),
		Title:       title,
		Description: description,
		Tags:        append([]string{}, tags...),
		UserID:      userID,
		Username:    s.usernameLocked(userID),
		CreatedAt:   s.stamp(),
	}
	s.questions[q.ID] = q
	for _, name := range tags {
		t, ok := s.tags[name]
		if !ok {
			t = &models.Tag{ID: s.id(), Name: name}
			s.tags[name] = t
		}
		t.QuestionCount++
	}
	return *q
}

// AddAnswer creates an answer to questionID by userID and notifies the
// question owner.
func (s *Store) AddAnswer(questionID, userID int64, description string) models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, _ := s.addAnswerLocked(questionID, userID, description)
	return a
}

func (s *Store) addAnswerLocked(questionID, userID int64, description string) (models.Answer, bool) {
	q, ok := s.questions[questionID]
	if !ok {
		return models.Answer{}, false
	}
	a := &models.Answer{
		ID:          s.id(),
		QuestionID:  questionID,
		Description: description,
		UserID:      userID,
		Username:    s.usernameLocked(userID),
		CreatedAt:   s.stamp(),
	}
	s.answers[a.ID] = a
	q.AnswerCount++
	if q.UserID != userID {
		related := q.ID
		s.notifyLocked(q.UserID, models.NotificationAnswer, a.Username+" answered your question: "+q.Title, &related)
	}
	return *a, true
}

// AddNotification delivers a notification to userID.
func (s *Store) AddNotification(userID int64, typ, content string, read bool) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notifyLocked(userID, typ, content, nil)
	s.notifications[n.ID].n.IsRead = read
	n.IsRead = read
	return n
}

func (s *Store) notifyLocked(userID int64, typ, content string, related *int64) models.Notification {
	n := models.Notification{
		ID:        s.id(),
		Type:      typ,
		Content:   content,
		RelatedID: related,
		CreatedAt: s.stamp(),
	}
	s.notifications[n.ID] = &notificationRecord{userID: userID, n: n}
	return n
}

// AddQuizQuestions adds questions to the bank quizzes on topic draw from.
func (s *Store) AddQuizQuestions(topic string, qs ...models.QuizQuestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range qs {
		if q.ID == 0 {
			q.ID = s.id()
		}
		s.bank[topic] = append(s.bank[topic], q)
	}
}

// SetScoreOverride makes vote responses and stats for answerID report score
// instead of the real sum, as a server that has seen other votes would.
func (s *Store) SetScoreOverride(answerID int64, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scoreOverride[answerID] = score
}

// OmitVoteScore drops total_score from vote responses.
func (s *Store) OmitVoteScore(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitScore = omit
}

// SetQuizTimeLimit sets the time limit, in seconds, of quizzes created from
// now on.
func (s *Store) SetQuizTimeLimit(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizLimit = seconds
}

// Question returns a copy of the stored question.
func (s *Store) Question(id int64) (models.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return models.Question{}, false
	}
	return *q, true
}

// Notification returns a copy of the stored notification.
func (s *Store) Notification(id int64) (models.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.notifications[id]
	if !ok {
		return models.Notification{}, false
	}
	return rec.n, true
}

// Score returns the real vote sum of answerID.
func (s *Store) Score(answerID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scoreLocked(answerID)
}

func (s *Store) scoreLocked(answerID int64) int {
	total := 0
	for k, v := range s.votes {
		if k.answerID == answerID {
			total += v
		}
	}
	return total
}

func (s *Store) reportedScoreLocked(answerID int64) int {
	if score, ok := s.scoreOverride[answerID]; ok {
		return score
	}
	return s.scoreLocked(answerID)
}

func (s *Store) usernameLocked(id int64) string {
	if u, ok := s.users[id]; ok {
		return u.user.Username
	}
	return ""
}

func (s *Store) answerLocked(id int64) models.Answer {
	a := *s.answers[id]
	a.VoteScore = s.reportedScoreLocked(id)
	return a
}

func (s *Store) questionLocked(id int64) models.Question {
	return *s.questions[id]
}

// sortedIDs returns the ids of the values keep accepts, newest first or
// oldest first.
func sortedIDs[T any](m map[int64]T, keep func(T) bool, newestFirst bool) []int64 {
	ids := make([]int64, 0, len(m))
	for id, v := range m {
		if keep == nil || keep(v) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if newestFirst {
			return ids[i] > ids[j]
		}
		return ids[i] < ids[j]
	})
	return ids
}

func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
