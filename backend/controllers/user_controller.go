package controllers

import (
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
}

func NewUserController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService) *UserController {
	return &UserController{DB: db, Cfg: cfg, Progress: progress}
}

type UpdateProfileRequest struct {
	Name     string `json:"name" example:"John Doe" minLength:"2"`
	Password string `json:"password" example:"newPassword123" minLength:"8"`
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the account, its learning profile and the current question allowance
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	// The quota window is rolled forward first so the counter the client
	// sees is never stale
	progress, err := uc.Progress.RefreshQuota(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load user profile")
	}

	quota := fiber.Map{
		"daily_question_count": progress.DailyQuestionCount,
	}
	if !services.HasCapability(user.Tier, services.CapUnlimitedQuestions) {
		quota["daily_question_limit"] = services.FreeDailyQuestionLimit
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"tier":       user.Tier,
		"created_at": user.CreatedAt,
		"progress": fiber.Map{
			"learning_progress": progress.LearningProgress,
			"streak":            progress.Streak,
			"completed_topics":  progress.CompletedTopicList(),
			"weak_topics":       progress.WeakTopicList(),
			"last_active_date":  progress.LastActiveDate,
		},
		"quota":        quota,
		"capabilities": services.TierCapabilities(user.Tier),
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates the display name or password; the email identifies the account and cannot be changed
// @Tags users
// @Accept json
// @Produce json
// @Param input body UpdateProfileRequest true "Profile update data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Email != "" && input.Email != user.Email {
		return utils.BadRequest(c, "Email cannot be changed")
	}

	if input.Name != "" {
		user.Name = input.Name
	}

	if input.Password != "" {
		if len(input.Password) < 8 {
			return utils.BadRequest(c, "Password must be at least 8 characters")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return utils.InternalServerError(c, "Could not hash password")
		}
		user.PasswordHash = string(hashed)
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"tier":  user.Tier,
	})
}
