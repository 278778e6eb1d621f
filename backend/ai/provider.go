package ai

import (
	"context"
	"errors"
	"fmt"
)

// CurationFailedMessage is the exact string clients receive when model output
// could not be turned into a usable lesson.
const CurationFailedMessage = "CurationProtocolFailed"

// QuizQuestion is one multiple-choice question inside a generated lesson.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

// NextTopic is a follow-up suggestion attached to a lesson.
type NextTopic struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
}

// ExamMetadata carries the extra constraints of exam-style quizzes.
type ExamMetadata struct {
	DurationMinutes int `json:"duration_minutes"`
	PassingScore    int `json:"passing_score"`
}

// LessonContent is the structured payload a provider must return for a
// lesson request.
type LessonContent struct {
	Topic        string         `json:"topic"`
	LessonText   string         `json:"lesson_text"`
	Summary      []string       `json:"summary"`
	Quiz         []QuizQuestion `json:"quiz"`
	NextTopics   []NextTopic    `json:"next_topics"`
	ExamMetadata *ExamMetadata  `json:"exam_metadata,omitempty"`
}

// ProfileContext is the slice of a learner's profile that prompts are
// personalized with.
type ProfileContext struct {
	LearningProgress int
	CompletedTopics  []string
	WeakTopics       []string
	Tier             string
}

// LessonRequest asks the provider for one lesson.
type LessonRequest struct {
	Topic      string
	Difficulty string
	Exam       bool
	Profile    ProfileContext
}

// ChatTurn is one prior message in a tutoring conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// TutorRequest asks the provider to answer one learner question.
type TutorRequest struct {
	Question   string
	History    []ChatTurn
	LessonText string
	Profile    ProfileContext
}

// Provider generates tutoring content. Implementations must not persist
// anything; callers decide what to keep.
type Provider interface {
	GenerateLesson(ctx context.Context, req LessonRequest) (*LessonContent, error)
	AskTutor(ctx context.Context, req TutorRequest) (string, error)
	SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error)
	AnalyzeDocument(ctx context.Context, fileName, contentType string, data []byte, profile ProfileContext) (string, error)
}

// CurationError reports model output that failed validation. Nothing derived
// from the bad output may be stored.
type CurationError struct {
	Reason string
}

func (e *CurationError) Error() string {
	return fmt.Sprintf("%s: %s", CurationFailedMessage, e.Reason)
}

// IsCurationError reports whether err is a lesson curation failure.
func IsCurationError(err error) bool {
	var ce *CurationError
	return errors.As(err, &ce)
}
