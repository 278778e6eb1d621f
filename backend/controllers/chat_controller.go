package controllers

import (
	"strings"

	"project/backend/ai"
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxHistoryTurns caps how much conversation history is replayed to the
// model on each question.
const maxHistoryTurns = 20

type ChatController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Provider ai.Provider
	Progress *services.ProgressService
}

func NewChatController(db *gorm.DB, cfg *config.Config, provider ai.Provider, progress *services.ProgressService) *ChatController {
	return &ChatController{DB: db, Cfg: cfg, Provider: provider, Progress: progress}
}

// AskTutor godoc
// @Summary Ask the tutor a question
// @Description Answers a learner question, optionally continuing a session or grounding on a lesson
// @Tags tutor
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Question data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /tutor/ask [post]
func (cc *ChatController) AskTutor(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type AskInput struct {
		Question   string `json:"question"`
		SessionKey string `json:"session_key"`
		LessonID   *uint  `json:"lesson_id"`
	}

	var input AskInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	input.Question = strings.TrimSpace(input.Question)
	if input.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	// Roll the quota window forward, then gate before anything is spent
	progress, err := cc.Progress.RefreshQuota(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not load user profile",
		})
	}
	if !services.CanAskQuestion(user.Tier, progress.DailyQuestionCount) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Daily question limit reached",
			"upgrade": string(models.TierPremium),
		})
	}

	var conversation models.Conversation
	haveSession := input.SessionKey != ""
	if haveSession {
		if err := cc.DB.Where("session_key = ? AND user_id = ?", input.SessionKey, userID).First(&conversation).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Session not found",
			})
		}
	}

	// The lesson reference is validated before any session row is created
	lessonID := input.LessonID
	if lessonID == nil && haveSession {
		lessonID = conversation.LessonID
	}
	var lessonText string
	if lessonID != nil {
		var lesson models.Lesson
		if err := cc.DB.Where("id = ? AND user_id = ?", *lessonID, userID).First(&lesson).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Lesson not found",
			})
		}
		lessonText = lesson.LessonText
	}

	var history []models.ChatMessage
	if haveSession {
		cc.DB.Where("conversation_id = ?", conversation.ID).
			Order("created_at asc, id asc").Find(&history)
		if len(history) > maxHistoryTurns {
			history = history[len(history)-maxHistoryTurns:]
		}
	}
	turns := make([]ai.ChatTurn, 0, len(history))
	for _, m := range history {
		turns = append(turns, ai.ChatTurn{Role: m.Role, Content: m.Content})
	}

	answer, err := cc.Provider.AskTutor(c.Context(), ai.TutorRequest{
		Question:   input.Question,
		History:    turns,
		LessonText: lessonText,
		Profile: ai.ProfileContext{
			LearningProgress: progress.LearningProgress,
			CompletedTopics:  progress.CompletedTopicList(),
			WeakTopics:       progress.WeakTopicList(),
			Tier:             string(user.Tier),
		},
	})
	if err != nil {
		// A failed answer costs nothing and stores nothing
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Tutor is unavailable",
		})
	}

	if !haveSession {
		conversation = models.Conversation{
			UserID:     userID,
			SessionKey: uuid.NewString(),
			LessonID:   input.LessonID,
		}
		if err := cc.DB.Create(&conversation).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not create session",
			})
		}
	}

	// The counter moves only after a successful answer
	progress, err = cc.Progress.CountQuestion(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update question count",
		})
	}

	cc.DB.Create(&models.ChatMessage{ConversationID: conversation.ID, Role: "user", Content: input.Question})
	cc.DB.Create(&models.ChatMessage{ConversationID: conversation.ID, Role: "assistant", Content: answer})

	return c.JSON(fiber.Map{
		"answer":               answer,
		"session_key":          conversation.SessionKey,
		"daily_question_count": progress.DailyQuestionCount,
	})
}

// GetHistory returns all messages of one tutoring session in order.
func (cc *ChatController) GetHistory(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	sessionKey := c.Params("sessionKey")

	var conversation models.Conversation
	if err := cc.DB.Where("session_key = ? AND user_id = ?", sessionKey, userID).First(&conversation).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var messages []models.ChatMessage
	if err := cc.DB.Where("conversation_id = ?", conversation.ID).
		Order("created_at asc, id asc").Find(&messages).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not load history",
		})
	}

	items := make([]fiber.Map, 0, len(messages))
	for _, m := range messages {
		items = append(items, fiber.Map{
			"role":       m.Role,
			"content":    m.Content,
			"created_at": m.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"session_key": conversation.SessionKey,
		"lesson_id":   conversation.LessonID,
		"messages":    items,
	})
}
