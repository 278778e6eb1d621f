package models

import (
	"time"

	"gorm.io/gorm"
)

// QuizScore is one graded quiz (or mastery acknowledgement, recorded as 100).
// Rows are append-only and chronological.
type QuizScore struct {
	gorm.Model
	UserID     uint   `gorm:"index"`
	Topic      string
	Score      int
	Difficulty string `gorm:"type:varchar(16)"` // beginner, intermediate, advanced
}

type MonthlyProgress struct {
	Month           time.Month `json:"month"`
	Year            int        `json:"year"`
	QuizzesTaken    int        `json:"quizzes_taken"`
	AverageScore    float64    `json:"average_score"`
	TopicsCompleted int        `json:"topics_completed"`
}

type ProgressOverview struct {
	Streak            int         `json:"streak"`
	LearningProgress  int         `json:"learning_progress"`
	CompletedTopics   []string    `json:"completed_topics"`
	WeakTopics        []string    `json:"weak_topics"`
	TotalQuizzes      int64       `json:"total_quizzes"`
	DocumentsUploaded int64       `json:"documents_uploaded"`
	RecentScores      []QuizScore `json:"recent_scores"`
}
