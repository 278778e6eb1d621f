package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseLessonContent validates raw model output into a LessonContent. Models
// occasionally wrap JSON in markdown fences even in JSON mode, so fences are
// stripped before decoding. Any validation failure is a CurationError.
func ParseLessonContent(raw string) (*LessonContent, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var content LessonContent
	if err := json.Unmarshal([]byte(cleaned), &content); err != nil {
		return nil, &CurationError{Reason: "response is not valid JSON"}
	}
	if strings.TrimSpace(content.LessonText) == "" {
		return nil, &CurationError{Reason: "lesson text is empty"}
	}
	for i, q := range content.Quiz {
		if strings.TrimSpace(q.Question) == "" {
			return nil, &CurationError{Reason: fmt.Sprintf("quiz question %d is empty", i+1)}
		}
		if len(q.Options) < 2 {
			return nil, &CurationError{Reason: fmt.Sprintf("quiz question %d has too few options", i+1)}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return nil, &CurationError{Reason: fmt.Sprintf("quiz question %d has an out-of-range answer index", i+1)}
		}
	}
	return &content, nil
}
