package models

import "gorm.io/gorm"

// Lesson is a stored AI-generated lesson. The structured parts (quiz,
// follow-up suggestions, exam constraints) keep the provider's JSON encoding
// in TEXT columns.
type Lesson struct {
	gorm.Model
	UserID       uint   `gorm:"index"`
	Topic        string
	Difficulty   string `gorm:"type:varchar(16)"` // beginner, intermediate, advanced
	LessonText   string `gorm:"type:text"`
	Summary      string `gorm:"type:text"` // JSON array of key points
	Quiz         string // JSON array of quiz questions
	NextTopics   string // JSON array of {topic, difficulty} suggestions
	IsExam       bool   `gorm:"default:false"`
	ExamMetadata string // JSON, empty for non-exam lessons
}
