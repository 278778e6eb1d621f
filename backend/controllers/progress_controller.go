package controllers

import (
	"project/backend/config"
	"project/backend/models"
	"project/backend/utils"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewProgressController(db *gorm.DB, cfg *config.Config) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns quiz activity aggregated over the last 4 months
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	// Get last 4 months of quiz activity
	now := time.Now()
	months := make([]models.MonthlyProgress, 4)

	for i := 0; i < 4; i++ {
		month := now.AddDate(0, -i, 0)
		startOfMonth := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
		endOfMonth := startOfMonth.AddDate(0, 1, 0)

		var scores []models.QuizScore
		pc.DB.Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, startOfMonth, endOfMonth).
			Find(&scores)

		total := 0
		topics := map[string]bool{}
		for _, s := range scores {
			total += s.Score
			topics[s.Topic] = true
		}

		average := 0.0
		if len(scores) > 0 {
			average = float64(total) / float64(len(scores))
		}

		months[i] = models.MonthlyProgress{
			Month:           month.Month(),
			Year:            month.Year(),
			QuizzesTaken:    len(scores),
			AverageScore:    average,
			TopicsCompleted: len(topics),
		}
	}

	return c.JSON(fiber.Map{
		"progress": months,
	})
}

// GetProgressOverview godoc
// @Summary Get progress overview
// @Description Returns summary of user's learning profile
// @Tags progress
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /progress/overview [get]
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var userProgress models.UserProgress
	pc.DB.Where("user_id = ?", userID).First(&userProgress)

	var totalQuizzes int64
	pc.DB.Model(&models.QuizScore{}).
		Where("user_id = ?", userID).
		Count(&totalQuizzes)

	var documentsUploaded int64
	pc.DB.Model(&models.UploadedDocument{}).
		Where("user_id = ?", userID).
		Count(&documentsUploaded)

	var recentScores []models.QuizScore
	pc.DB.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Limit(5).
		Find(&recentScores)

	return c.JSON(models.ProgressOverview{
		Streak:            userProgress.Streak,
		LearningProgress:  userProgress.LearningProgress,
		CompletedTopics:   userProgress.CompletedTopicList(),
		WeakTopics:        userProgress.WeakTopicList(),
		TotalQuizzes:      totalQuizzes,
		DocumentsUploaded: documentsUploaded,
		RecentScores:      recentScores,
	})
}
