package controllers

import (
	"errors"
	"io"

	"project/backend/ai"
	"project/backend/config"
	"project/backend/models"
	"project/backend/services"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// maxDocumentBytes caps uploaded study material at 10 MB.
const maxDocumentBytes = 10 << 20

type DocumentController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Provider ai.Provider
}

func NewDocumentController(db *gorm.DB, cfg *config.Config, provider ai.Provider) *DocumentController {
	return &DocumentController{DB: db, Cfg: cfg, Provider: provider}
}

// AnalyzeDocument godoc
// @Summary Analyze uploaded study material
// @Description Runs an uploaded document or image through the tutor and stores the analysis
// @Tags documents
// @Accept mpfd
// @Produce json
// @Param document formData file true "Document to analyze"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /documents [post]
func (dc *DocumentController) AnalyzeDocument(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var user models.User
	if err := dc.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if services.IsFeatureLocked(user.Tier, services.CapDocumentAnalysis) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "Document analysis requires a premium subscription",
			"upgrade": string(models.TierPremium),
		})
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Document file is required",
		})
	}
	if fileHeader.Size > maxDocumentBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is too large",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not read file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not read file",
		})
	}

	var progress models.UserProgress
	dc.DB.Where("user_id = ?", userID).First(&progress)

	analysis, err := dc.Provider.AnalyzeDocument(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, ai.ProfileContext{
		LearningProgress: progress.LearningProgress,
		CompletedTopics:  progress.CompletedTopicList(),
		WeakTopics:       progress.WeakTopicList(),
		Tier:             string(user.Tier),
	})
	if err != nil {
		if errors.Is(err, ai.ErrUnsupportedDocument) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unsupported document type",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Document analysis failed",
		})
	}

	document := models.UploadedDocument{
		UserID:   userID,
		FileName: fileHeader.Filename,
		Analysis: analysis,
	}
	if err := dc.DB.Create(&document).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save analysis",
		})
	}

	return c.JSON(fiber.Map{
		"document": fiber.Map{
			"id":        document.ID,
			"file_name": document.FileName,
			"analysis":  document.Analysis,
		},
	})
}

// ListDocuments returns the caller's analyzed documents, newest first.
func (dc *DocumentController) ListDocuments(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var documents []models.UploadedDocument
	if err := dc.DB.Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&documents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not load documents",
		})
	}

	items := make([]fiber.Map, 0, len(documents))
	for _, d := range documents {
		items = append(items, fiber.Map{
			"id":         d.ID,
			"file_name":  d.FileName,
			"analysis":   d.Analysis,
			"created_at": d.CreatedAt,
		})
	}

	return c.JSON(fiber.Map{
		"documents": items,
	})
}
