package controllers

import (
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubscriptionController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Subscription *services.SubscriptionService
	Progress     *services.ProgressService
}

func NewSubscriptionController(db *gorm.DB, cfg *config.Config, subscription *services.SubscriptionService, progress *services.ProgressService) *SubscriptionController {
	return &SubscriptionController{DB: db, Cfg: cfg, Subscription: subscription, Progress: progress}
}

type UpgradeRequest struct {
	Tier string `json:"tier" example:"premium" enums:"free,premium,pro"`
}

// GetSubscription godoc
// @Summary Get subscription state
// @Description Returns the caller's tier, its capabilities and the current question allowance
// @Tags subscription
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subscription [get]
func (sc *SubscriptionController) GetSubscription(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := sc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	progress, err := sc.Progress.RefreshQuota(userID)
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
		"tier":         user.Tier,
		"capabilities": services.TierCapabilities(user.Tier),
		"quota":        quota,
	})
}

// Upgrade godoc
// @Summary Upgrade the subscription tier
// @Description Moves the account to the requested tier once the upgrade is approved
// @Tags subscription
// @Accept json
// @Produce json
// @Param input body UpgradeRequest true "Target tier"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /subscription/upgrade [post]
func (sc *SubscriptionController) Upgrade(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Tier string `json:"tier"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := sc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	tier, err := sc.Subscription.Upgrade(c.Context(), userID, user.Email, input.Tier)
	if err != nil {
		if serr, ok := services.AsServiceError(err); ok {
			switch serr.Code {
			case services.ErrorInvalid:
				return utils.BadRequest(c, serr.Message)
			case services.ErrorEntitlementDenied:
				return utils.Forbidden(c, serr.Message)
			}
		}
		return utils.InternalServerError(c, "Could not update subscription")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"tier":         tier,
		"capabilities": services.TierCapabilities(tier),
	})
}
