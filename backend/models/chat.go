package models

import "gorm.io/gorm"

// Conversation groups tutor chat turns. SessionKey is the UUID handed to the
// client so it can continue the same thread.
type Conversation struct {
	gorm.Model
	UserID     uint   `gorm:"index"`
	LessonID   *uint  // optional lesson the chat is anchored to
	SessionKey string `gorm:"uniqueIndex;type:varchar(36)"`
	Messages   []ChatMessage
}

type ChatMessage struct {
	gorm.Model
	ConversationID uint   `gorm:"index"`
	Role           string `gorm:"type:varchar(16)"` // user, assistant
	Content        string `gorm:"type:text"`
}
