package controllers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"project/backend/ai"
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const lessonCacheTTL = 6 * time.Hour

type LessonController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	RDB      *redis.Client
	Provider ai.Provider
	Progress *services.ProgressService
}

func NewLessonController(db *gorm.DB, cfg *config.Config, rdb *redis.Client, provider ai.Provider, progress *services.ProgressService) *LessonController {
	return &LessonController{DB: db, Cfg: cfg, RDB: rdb, Provider: provider, Progress: progress}
}

// GenerateLesson godoc
// @Summary Generate a lesson
// @Description Generates a personalized lesson with a quiz for the given topic
// @Tags lessons
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Lesson request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /lessons [post]
func (lc *LessonController) GenerateLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type LessonInput struct {
		Topic      string `json:"topic"`
		Difficulty string `json:"difficulty"`
		Exam       bool   `json:"exam"`
	}

	var input LessonInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	input.Topic = strings.TrimSpace(input.Topic)
	if input.Topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Topic is required",
		})
	}
	if input.Difficulty == "" {
		input.Difficulty = "beginner"
	}
	switch input.Difficulty {
	case "beginner", "intermediate", "advanced":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown difficulty",
		})
	}

	var user models.User
	if err := lc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if services.LockedDifficulty(user.Tier, input.Difficulty) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "This difficulty requires a premium subscription",
			"upgrade": string(models.TierPremium),
		})
	}
	if input.Exam && services.IsFeatureLocked(user.Tier, services.CapExamQuiz) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Exam quizzes require a premium subscription",
			"upgrade": string(models.TierPremium),
		})
	}

	cacheKey := fmt.Sprintf("lesson:%d:%s:%s:%t", userID, strings.ToLower(input.Topic), input.Difficulty, input.Exam)
	if lc.RDB != nil {
		if cached, err := lc.RDB.Get(c.Context(), cacheKey).Result(); err == nil {
			c.Set("X-Cache", "hit")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(cached)
		}
	}

	var progress models.UserProgress
	lc.DB.Where("user_id = ?", userID).First(&progress)

	content, err := lc.Provider.GenerateLesson(c.Context(), ai.LessonRequest{
		Topic:      input.Topic,
		Difficulty: input.Difficulty,
		Exam:       input.Exam,
		Profile: ai.ProfileContext{
			LearningProgress: progress.LearningProgress,
			CompletedTopics:  progress.CompletedTopicList(),
			WeakTopics:       progress.WeakTopicList(),
			Tier:             string(user.Tier),
		},
	})
	if err != nil {
		// Nothing is persisted when generation fails
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": ai.CurationFailedMessage,
		})
	}

	lesson := models.Lesson{
		UserID:     userID,
		Topic:      content.Topic,
		Difficulty: input.Difficulty,
		LessonText: content.LessonText,
		Summary:    jsonColumn(content.Summary),
		Quiz:       jsonColumn(content.Quiz),
		NextTopics: jsonColumn(content.NextTopics),
		IsExam:     input.Exam,
	}
	if content.ExamMetadata != nil {
		lesson.ExamMetadata = jsonColumn(content.ExamMetadata)
	}
	if err := lc.DB.Create(&lesson).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save lesson",
		})
	}

	lessonMap := fiber.Map{
		"id":          lesson.ID,
		"topic":       lesson.Topic,
		"difficulty":  lesson.Difficulty,
		"is_exam":     lesson.IsExam,
		"lesson_text": content.LessonText,
		"summary":     content.Summary,
		"quiz":        content.Quiz,
		"next_topics": content.NextTopics,
	}
	if content.ExamMetadata != nil {
		lessonMap["exam_metadata"] = content.ExamMetadata
	}
	response := fiber.Map{"lesson": lessonMap}

	if lc.RDB != nil {
		if body, err := json.Marshal(response); err == nil {
			lc.RDB.Set(c.Context(), cacheKey, body, lessonCacheTTL)
		}
	}

	return c.JSON(response)
}

// ListLessons returns the caller's lessons, newest first.
func (lc *LessonController) ListLessons(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var lessons []models.Lesson
	if err := lc.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&lessons).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not load lessons",
		})
	}

	items := make([]fiber.Map, 0, len(lessons))
	for _, lesson := range lessons {
		items = append(items, fiber.Map{
			"id":         lesson.ID,
			"topic":      lesson.Topic,
			"difficulty": lesson.Difficulty,
			"is_exam":    lesson.IsExam,
			"created_at": lesson.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"lessons": items,
	})
}

// GetLesson returns one lesson with its full content.
func (lc *LessonController) GetLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	lessonID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var lesson models.Lesson
	if err := lc.DB.Where("id = ? AND user_id = ?", lessonID, userID).First(&lesson).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lesson not found",
		})
	}

	response := fiber.Map{
		"id":          lesson.ID,
		"topic":       lesson.Topic,
		"difficulty":  lesson.Difficulty,
		"is_exam":     lesson.IsExam,
		"lesson_text": lesson.LessonText,
		"summary":     json.RawMessage(lesson.Summary),
		"quiz":        json.RawMessage(lesson.Quiz),
		"next_topics": json.RawMessage(lesson.NextTopics),
		"created_at":  lesson.CreatedAt,
	}
	if lesson.ExamMetadata != "" {
		response["exam_metadata"] = json.RawMessage(lesson.ExamMetadata)
	}

	return c.JSON(response)
}

// CompleteLesson godoc
// @Summary Complete a lesson
// @Description Records a quiz result or mastery acknowledgement and updates the learning profile
// @Tags lessons
// @Accept json
// @Produce json
// @Param id path int true "Lesson ID"
// @Param request body map[string]interface{} true "Completion data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /lessons/{id}/complete [post]
func (lc *LessonController) CompleteLesson(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, lc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	lessonID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid lesson ID",
		})
	}

	var lesson models.Lesson
	if err := lc.DB.Where("id = ? AND user_id = ?", lessonID, userID).First(&lesson).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Lesson not found",
		})
	}

	type CompleteInput struct {
		Score   *int `json:"score"`
		Mastery bool `json:"mastery"`
	}

	var input CompleteInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	event := services.ActivityEvent{
		Topic:       lesson.Topic,
		Difficulty:  lesson.Difficulty,
		MasteryOnly: input.Mastery,
	}
	if !input.Mastery {
		if input.Score == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Score is required",
			})
		}
		if *input.Score < 0 || *input.Score > 100 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Score must be between 0 and 100",
			})
		}
		event.Score = *input.Score
	}

	progress, err := lc.Progress.RecordActivity(userID, event)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not record activity",
		})
	}

	return c.JSON(fiber.Map{
		"progress": fiber.Map{
			"learning_progress": progress.LearningProgress,
			"streak":            progress.Streak,
			"completed_topics":  progress.CompletedTopicList(),
			"weak_topics":       progress.WeakTopicList(),
		},
	})
}

func jsonColumn(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
