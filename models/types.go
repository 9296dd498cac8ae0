// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Notification type constants
const (
	NotificationAnswer  = "answer"
	NotificationVote    = "vote"
	NotificationComment = "comment"
	NotificationMention = "mention"
)

// Vote values
const (
	VoteDown = -1
	VoteNone = 0
	VoteUp   = 1
)

// Quiz difficulty constants
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyMixed  = "mixed"
)

// Request types

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type CreateQuestionRequest struct {
	Title       string   `json:"title" validate:"required,min=5,max=200"`
	Description string   `json:"description" validate:"required"`
	Tags        []string `json:"tags" validate:"required,min=1,max=5,dive,required"`
}

type UpdateQuestionRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,max=5,dive,required"`
}

type CreateAnswerRequest struct {
	QuestionID  int64  `json:"question_id" validate:"required,gt=0"`
	Description string `json:"description" validate:"required"`
}

type UpdateAnswerRequest struct {
	Description string `json:"description" validate:"required"`
}

type AcceptAnswerRequest struct {
	AnswerID int64 `json:"answer_id" validate:"required,gt=0"`
}

type CastVoteRequest struct {
	AnswerID int64 `json:"answer_id" validate:"required,gt=0"`
	Value    int   `json:"value" validate:"oneof=-1 1"`
}

type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description,omitempty"`
}

type CreateQuizRequest struct {
	Topic        string `json:"topic" validate:"required"`
	NumQuestions int    `json:"num_questions" validate:"required,gt=0,lte=50"`
	Difficulty   string `json:"difficulty" validate:"required,oneof=easy medium hard mixed"`
}

type QuizAnswer struct {
	QuestionID     int64 `json:"question_id" validate:"required,gt=0"`
	SelectedOption int   `json:"selected_option" validate:"gte=0"`
}

type QuizSubmission struct {
	QuizID  int64        `json:"quiz_id" validate:"required,gt=0"`
	Answers []QuizAnswer `json:"answers" validate:"dive"`
}

// Response types

type TokenResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
	TokenType   string `json:"token_type"`
}

type TokenVerification struct {
	Valid    bool   `json:"valid"`
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// VoteResult is the body returned by POST /votes/ and DELETE /votes/answer/{id}.
// TotalScore is only present when the backend echoes the new aggregate.
type VoteResult struct {
	AnswerID   int64  `json:"answer_id,omitempty"`
	Value      int    `json:"value,omitempty" validate:"oneof=-1 0 1"`
	TotalScore *int   `json:"total_score,omitempty"`
	Message    string `json:"message,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UnreadCount struct {
	Count int `json:"count" validate:"gte=0"`
}

// Domain types

type User struct {
	ID        int64     `json:"id" validate:"required,gt=0"`
	Username  string    `json:"username" validate:"required"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

type Question struct {
	ID               int64      `json:"id" validate:"required,gt=0"`
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description"`
	Tags             []string   `json:"tags"`
	UserID           int64      `json:"user_id" validate:"required,gt=0"`
	Username         string     `json:"username"`
	AcceptedAnswerID *int64     `json:"accepted_answer_id,omitempty"`
	AnswerCount      int        `json:"answer_count" validate:"gte=0"`
	VoteScore        int        `json:"vote_score"`
	CreatedAt        Timestamp  `json:"created_at"`
	UpdatedAt        *Timestamp `json:"updated_at,omitempty"`
}

// HasAcceptedAnswer reports whether the question is solved.
func (q Question) HasAcceptedAnswer() bool {
	return q.AcceptedAnswerID != nil
}

type Answer struct {
	ID          int64      `json:"id" validate:"required,gt=0"`
	QuestionID  int64      `json:"question_id" validate:"required,gt=0"`
	Description string     `json:"description"`
	UserID      int64      `json:"user_id" validate:"required,gt=0"`
	Username    string     `json:"username"`
	IsAccepted  bool       `json:"is_accepted"`
	VoteScore   int        `json:"vote_score"`
	CreatedAt   Timestamp  `json:"created_at"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

type Vote struct {
	ID       int64 `json:"id,omitempty"`
	AnswerID int64 `json:"answer_id"`
	UserID   int64 `json:"user_id,omitempty"`
	Value    int   `json:"value" validate:"oneof=-1 0 1"`
}

type VoteStats struct {
	AnswerID   int64 `json:"answer_id"`
	TotalScore int   `json:"total_score"`
	Upvotes    int   `json:"upvotes" validate:"gte=0"`
	Downvotes  int   `json:"downvotes" validate:"gte=0"`
	UserVote   *int  `json:"user_vote,omitempty" validate:"omitempty,oneof=-1 0 1"`
}

type Notification struct {
	ID        int64     `json:"id" validate:"required,gt=0"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	RelatedID *int64    `json:"related_id,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

type NotificationStats struct {
	TotalCount  int `json:"total_count" validate:"gte=0"`
	UnreadCount int `json:"unread_count" validate:"gte=0"`
}

type Tag struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name" validate:"required"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"question_count" validate:"gte=0"`
}

type QuizQuestion struct {
	ID            int64    `json:"id" validate:"required,gt=0"`
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2"`
	CorrectOption *int     `json:"correct_option,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID             int64          `json:"id" validate:"required,gt=0"`
	Topic          string         `json:"topic" validate:"required"`
	Difficulty     string         `json:"difficulty,omitempty"`
	TotalQuestions int            `json:"total_questions" validate:"gte=0"`
	Score          *int           `json:"score,omitempty"`
	Completed      bool           `json:"completed"`
	TimeLimit      int            `json:"time_limit,omitempty" validate:"gte=0"` // seconds
	CreatedAt      Timestamp      `json:"created_at"`
	Questions      []QuizQuestion `json:"questions,omitempty" validate:"dive"`
}

type QuestionResult struct {
	QuestionID     int64  `json:"question_id"`
	SelectedOption int    `json:"selected_option"`
	CorrectOption  int    `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
	Explanation    string `json:"explanation,omitempty"`
}

type QuizResult struct {
	QuizID         int64            `json:"quiz_id" validate:"required,gt=0"`
	Score          int              `json:"score" validate:"gte=0"`
	TotalQuestions int              `json:"total_questions" validate:"gte=0"`
	Percentage     float64          `json:"percentage"`
	Results        []QuestionResult `json:"results"`
}

type TopicStats struct {
	Topic        string  `json:"topic"`
	TotalQuizzes int     `json:"total_quizzes" validate:"gte=0"`
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
}

type LeaderboardEntry struct {
	Username       string  `json:"username" validate:"required"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
}

// Error response

// ErrorResponse covers the error bodies the backend emits. Detail is either a
// string or a list of field errors, so it is kept raw.
type ErrorResponse struct {
	Detail  RawDetail `json:"detail,omitempty"`
	Error   string    `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
}
