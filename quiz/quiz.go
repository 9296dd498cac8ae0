// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/danielhkuo/stackit/models"
)

// Defaults used when generating a quiz.
const (
	DefaultQuestions  = 10
	DefaultDifficulty = models.DifficultyMixed
	DefaultTimeLimit  = 10 * time.Minute
)

var (
	ErrAlreadySubmitted = errors.New("quiz already submitted")
	ErrNothingAnswered  = errors.New("answer at least one question before submitting")
	ErrUnknownQuestion  = errors.New("question is not part of this quiz")
	ErrInvalidOption    = errors.New("option out of range")
	ErrNoQuestions      = errors.New("quiz has no questions")
)

// API is the part of the client an attempt needs.
type API interface {
	CreateQuiz(ctx context.Context, req models.CreateQuizRequest) (models.Quiz, error)
	QuizQuestions(ctx context.Context, id int64) ([]models.QuizQuestion, error)
	SubmitQuiz(ctx context.Context, sub models.QuizSubmission) (models.QuizResult, error)
}

// Attempt is one user's run through a generated quiz.
type Attempt struct {
	api     API
	quiz    models.Quiz
	started time.Time

	mu         sync.Mutex
	answers    map[int64]int
	submitting bool
	result     *models.QuizResult
}

// Generate asks the server for a new quiz on topic. n <= 0 and an empty
// difficulty use the defaults.
func Generate(ctx context.Context, api API, topic string, n int, difficulty string) (*Attempt, error) {
	if n <= 0 {
		n = DefaultQuestions
	}
	if difficulty == "" {
		difficulty = DefaultDifficulty
	}

	q, err := api.CreateQuiz(ctx, models.CreateQuizRequest{
		Topic:        topic,
		NumQuestions: n,
		Difficulty:   difficulty,
	})
	if err != nil {
		return nil, err
	}

	if len(q.Questions) == 0 {
		q.Questions, err = api.QuizQuestions(ctx, q.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load quiz questions: %w", err)
		}
	}
	if len(q.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	return &Attempt{
		api:     api,
		quiz:    q,
		started: time.Now(),
		answers: make(map[int64]int),
	}, nil
}

// Quiz returns the quiz being attempted.
func (a *Attempt) Quiz() models.Quiz {
	return a.quiz
}

// Deadline is when the attempt should be submitted automatically.
func (a *Attempt) Deadline() time.Time {
	limit := DefaultTimeLimit
	if a.quiz.TimeLimit > 0 {
		limit = time.Duration(a.quiz.TimeLimit) * time.Second
	}
	return a.started.Add(limit)
}

func (a *Attempt) question(id int64) (models.QuizQuestion, bool) {
	for _, q := range a.quiz.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return models.QuizQuestion{}, false
}

// Choose records option (0-based) for questionID. Choosing again replaces
// the previous choice.
func (a *Attempt) Choose(questionID int64, option int) error {
	q, ok := a.question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidOption, option, len(q.Options))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result != nil || a.submitting {
		return ErrAlreadySubmitted
	}
	a.answers[questionID] = option
	return nil
}

// Choice returns the option chosen for questionID.
func (a *Attempt) Choice(questionID int64) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	opt, ok := a.answers[questionID]
	return opt, ok
}

// Answered returns how many questions have a choice.
func (a *Attempt) Answered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.answers)
}

// Submit sends the chosen answers. It can succeed only once; a failed
// submission may be retried. At least one question must be answered.
func (a *Attempt) Submit(ctx context.Context) (models.QuizResult, error) {
	return a.submit(ctx, false)
}

// SubmitExpired sends whatever has been answered when the time limit has
// passed, even if nothing has.
func (a *Attempt) SubmitExpired(ctx context.Context) (models.QuizResult, error) {
	return a.submit(ctx, true)
}

// Expired reports whether the deadline has passed.
func (a *Attempt) Expired() bool {
	return !time.Now().Before(a.Deadline())
}

func (a *Attempt) submit(ctx context.Context, expired bool) (models.QuizResult, error) {
	a.mu.Lock()
	if a.result != nil || a.submitting {
		a.mu.Unlock()
		return models.QuizResult{}, ErrAlreadySubmitted
	}
	if len(a.answers) == 0 && !expired {
		a.mu.Unlock()
		return models.QuizResult{}, ErrNothingAnswered
	}
	sub := models.QuizSubmission{QuizID: a.quiz.ID, Answers: make([]models.QuizAnswer, 0, len(a.answers))}
	for id, opt := range a.answers {
		sub.Answers = append(sub.Answers, models.QuizAnswer{QuestionID: id, SelectedOption: opt})
	}
	a.submitting = true
	a.mu.Unlock()

	sort.Slice(sub.Answers, func(i, j int) bool { return sub.Answers[i].QuestionID < sub.Answers[j].QuestionID })

	res, err := a.api.SubmitQuiz(ctx, sub)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.submitting = false
	if err != nil {
		return models.QuizResult{}, err
	}
	a.result = &res
	return res, nil
}

// Result returns the submission result, if any.
func (a *Attempt) Result() (models.QuizResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return models.QuizResult{}, false
	}
	return *a.result, true
}

// ReviewItem pairs a question with the user's choice and the right answer.
type ReviewItem struct {
	Question    models.QuizQuestion `json:"question" yaml:"question"`
	Chosen      *int                `json:"chosen,omitempty" yaml:"chosen,omitempty"`
	Correct     *int                `json:"correct,omitempty" yaml:"correct,omitempty"`
	IsCorrect   bool                `json:"is_correct" yaml:"is_correct"`
	Explanation string              `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Review lists every question with its outcome. It is available only after
// a successful submission. Per-question results from the server take
// precedence over the correct_option embedded in the quiz.
func (a *Attempt) Review() ([]ReviewItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return nil, errors.New("quiz not submitted yet")
	}

	byID := make(map[int64]models.QuestionResult, len(a.result.Results))
	for _, r := range a.result.Results {
		byID[r.QuestionID] = r
	}

	items := make([]ReviewItem, 0, len(a.quiz.Questions))
	for _, q := range a.quiz.Questions {
		item := ReviewItem{Question: q, Explanation: q.Explanation}
		if opt, ok := a.answers[q.ID]; ok {
			chosen := opt
			item.Chosen = &chosen
		}
		if r, ok := byID[q.ID]; ok {
			correct := r.CorrectOption
			item.Correct = &correct
			item.IsCorrect = r.IsCorrect
			if r.Explanation != "" {
				item.Explanation = r.Explanation
			}
		} else if q.CorrectOption != nil {
			correct := *q.CorrectOption
			item.Correct = &correct
			item.IsCorrect = item.Chosen != nil && *item.Chosen == correct
		}
		items = append(items, item)
	}
	return items, nil
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// TopicName formats a topic slug for display: "web-dev" becomes "Web dev".
func TopicName(topic string) string {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(topic)
	if name == "" {
		return ""
	}
	// Title-case only the first word; the rest keeps its case.
	first, rest, found := strings.Cut(name, " ")
	first = titleCaser.String(first)
	if !found {
		return first
	}
	return first + " " + rest
}

// Percentage returns score/total as a rounded percentage, 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// Grade buckets a percentage the way results are coloured.
type Grade int

const (
	Poor Grade = iota // below 60
	Fair              // 60 to 79
	Good              // 80 and above
)

// GradeOf returns the grade for pct.
func GradeOf(pct int) Grade {
	switch {
	case pct >= 80:
		return Good
	case pct >= 60:
		return Fair
	default:
		return Poor
	}
}
