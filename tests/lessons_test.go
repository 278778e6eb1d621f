package tests

import (
	"fmt"
	"project/backend/ai"
	"project/backend/models"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func generateLesson(t *testing.T, token, topic, difficulty string, exam bool) uint {
	t.Helper()
	resp, result := postJSON(t, "POST", "/api/lessons", token, map[string]interface{}{
		"topic":      topic,
		"difficulty": difficulty,
		"exam":       exam,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("generate lesson: status %d body %v", resp.StatusCode, result)
	}
	lesson := result["lesson"].(map[string]interface{})
	return uint(lesson["id"].(float64))
}

func TestGenerateLesson(t *testing.T) {
	_, token := createUser(uniqueEmail("lesson"), models.TierFree)

	resp, result := postJSON(t, "POST", "/api/lessons", token, map[string]interface{}{
		"topic": "Fractions",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	lesson := result["lesson"].(map[string]interface{})
	assert.Equal(t, "Fractions", lesson["topic"])
	assert.Equal(t, "beginner", lesson["difficulty"])
	assert.NotEmpty(t, lesson["lesson_text"])
	assert.NotEmpty(t, lesson["quiz"])
}

func TestGenerateLessonRequiresTopic(t *testing.T) {
	_, token := createUser(uniqueEmail("notopic"), models.TierFree)

	resp, _ := postJSON(t, "POST", "/api/lessons", token, map[string]interface{}{
		"topic": "   ",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGenerateLessonCurationFailure(t *testing.T) {
	user, token := createUser(uniqueEmail("curation"), models.TierFree)

	provider.lessonErr = &ai.CurationError{Reason: "response is not valid JSON"}
	defer func() { provider.lessonErr = nil }()

	resp, result := postJSON(t, "POST", "/api/lessons", token, map[string]interface{}{
		"topic": "Broken Topic",
	})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "CurationProtocolFailed", result["error"])

	// A failed generation must leave nothing behind
	var count int64
	db.Model(&models.Lesson{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGenerateLessonProviderError(t *testing.T) {
	// Transport failures surface the same way as bad model output
	_, token := createUser(uniqueEmail("transport"), models.TierFree)

	provider.lessonErr = fmt.Errorf("connection refused")
	defer func() { provider.lessonErr = nil }()

	resp, result := postJSON(t, "POST", "/api/lessons", token, map[string]interface{}{
		"topic": "Unreachable",
	})
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "CurationProtocolFailed", result["error"])
}

func TestGenerateLessonDifficultyGate(t *testing.T) {
	_, freeToken := createUser(uniqueEmail("freegate"), models.TierFree)

	resp, result := postJSON(t, "POST", "/api/lessons", freeToken, map[string]interface{}{
		"topic":      "Calculus",
		"difficulty": "advanced",
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, string(models.TierPremium), result["upgrade"])

	_, premiumToken := createUser(uniqueEmail("premiumgate"), models.TierPremium)
	resp, _ = postJSON(t, "POST", "/api/lessons", premiumToken, map[string]interface{}{
		"topic":      "Calculus",
		"difficulty": "advanced",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGenerateExamGate(t *testing.T) {
	_, freeToken := createUser(uniqueEmail("freeexam"), models.TierFree)

	resp, _ := postJSON(t, "POST", "/api/lessons", freeToken, map[string]interface{}{
		"topic": "History",
		"exam":  true,
	})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	_, proToken := createUser(uniqueEmail("proexam"), models.TierPro)
	resp, result := postJSON(t, "POST", "/api/lessons", proToken, map[string]interface{}{
		"topic": "History",
		"exam":  true,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	lesson := result["lesson"].(map[string]interface{})
	assert.Equal(t, true, lesson["is_exam"])
	assert.NotEmpty(t, lesson["exam_metadata"])
}

func TestListAndGetLessons(t *testing.T) {
	_, token := createUser(uniqueEmail("list"), models.TierFree)
	lessonID := generateLesson(t, token, "Geometry", "beginner", false)

	resp, result := postJSON(t, "GET", "/api/lessons", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	lessons := result["lessons"].([]interface{})
	assert.Len(t, lessons, 1)

	resp, result = postJSON(t, "GET", fmt.Sprintf("/api/lessons/%d", lessonID), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Geometry", result["topic"])
	assert.NotEmpty(t, result["lesson_text"])
	assert.NotEmpty(t, result["summary"])
	assert.NotEmpty(t, result["quiz"])

	// Another user's lesson is invisible
	_, otherToken := createUser(uniqueEmail("other"), models.TierFree)
	resp, _ = postJSON(t, "GET", fmt.Sprintf("/api/lessons/%d", lessonID), otherToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCompleteLessonQuiz(t *testing.T) {
	user, token := createUser(uniqueEmail("complete"), models.TierFree)
	lessonID := generateLesson(t, token, "Algebra", "beginner", false)

	// A weak score flags the topic and still completes it
	resp, result := postJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{
		"score": 55,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	progress := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(5), progress["learning_progress"])
	assert.Equal(t, float64(1), progress["streak"])

	stored := loadProgress(t, user.ID)
	assert.Contains(t, stored.CompletedTopicList(), "Algebra")
	assert.Contains(t, stored.WeakTopicList(), "Algebra")

	// A strong retake clears the weak flag without duplicating the topic
	resp, _ = postJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{
		"score": 90,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored = loadProgress(t, user.ID)
	assert.Equal(t, []string{"Algebra"}, stored.CompletedTopicList())
	assert.NotContains(t, stored.WeakTopicList(), "Algebra")
	assert.Equal(t, 10, stored.LearningProgress)
	assert.Equal(t, 1, stored.Streak) // same calendar day

	// Every attempt is kept, in order
	var scores []models.QuizScore
	db.Where("user_id = ?", user.ID).Order("created_at asc, id asc").Find(&scores)
	assert.Len(t, scores, 2)
	assert.Equal(t, 55, scores[0].Score)
	assert.Equal(t, 90, scores[1].Score)
}

func TestCompleteLessonMastery(t *testing.T) {
	user, token := createUser(uniqueEmail("mastery"), models.TierFree)
	lessonID := generateLesson(t, token, "Reading", "beginner", false)

	resp, _ := postJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{
		"mastery": true,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored := loadProgress(t, user.ID)
	assert.Equal(t, 2, stored.LearningProgress)
	assert.Contains(t, stored.CompletedTopicList(), "Reading")

	var score models.QuizScore
	db.Where("user_id = ?", user.ID).First(&score)
	assert.Equal(t, 100, score.Score)
}

func TestCompleteLessonValidation(t *testing.T) {
	_, token := createUser(uniqueEmail("badscore"), models.TierFree)
	lessonID := generateLesson(t, token, "Writing", "beginner", false)

	resp, _ := postJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{
		"score": 101,
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCompleteLessonProgressClamp(t *testing.T) {
	user, token := createUser(uniqueEmail("clamp"), models.TierFree)
	lessonID := generateLesson(t, token, "Physics", "beginner", false)

	stored := loadProgress(t, user.ID)
	stored.LearningProgress = 98
	db.Save(&stored)

	resp, result := postJSON(t, "POST", fmt.Sprintf("/api/lessons/%d/complete", lessonID), token, map[string]interface{}{
		"score": 80,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	progress := result["progress"].(map[string]interface{})
	assert.Equal(t, float64(100), progress["learning_progress"])
}
