package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
)

// ValidTier reports whether s names a known subscription tier.
func ValidTier(s string) bool {
	switch Tier(s) {
	case TierFree, TierPremium, TierPro:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name         string
	Email        string `gorm:"unique;not null"` // immutable after registration
	PasswordHash string `gorm:"not null"`
	Tier         Tier   `gorm:"type:varchar(16);default:free"` // free, premium, pro
}

// UserProgress is the per-user learning profile snapshot. The topic sets are
// stored as JSON arrays in TEXT columns; use the accessor methods below.
type UserProgress struct {
	gorm.Model
	UserID           uint `gorm:"uniqueIndex"`
	LearningProgress int  `gorm:"default:0"` // percent, 0-100
	Streak           int  `gorm:"default:0"` // consecutive active calendar days
	LastActiveDate   *time.Time

	DailyQuestionCount    int `gorm:"default:0"`
	LastQuestionResetDate time.Time

	CompletedTopics string // JSON array of topic strings
	WeakTopics      string // JSON array of topic strings
}

func (p *UserProgress) CompletedTopicList() []string {
	return decodeTopicList(p.CompletedTopics)
}

func (p *UserProgress) SetCompletedTopicList(topics []string) {
	p.CompletedTopics = encodeTopicList(topics)
}

func (p *UserProgress) WeakTopicList() []string {
	return decodeTopicList(p.WeakTopics)
}

func (p *UserProgress) SetWeakTopicList(topics []string) {
	p.WeakTopics = encodeTopicList(topics)
}

func decodeTopicList(raw string) []string {
	if raw == "" {
		return nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil
	}
	return topics
}

func encodeTopicList(topics []string) string {
	if len(topics) == 0 {
		return "[]"
	}
	data, err := json.Marshal(topics)
	if err != nil {
		return "[]"
	}
	return string(data)
}
