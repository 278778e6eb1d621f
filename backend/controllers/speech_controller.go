package controllers

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"project/backend/ai"
	"project/backend/config"
	"project/backend/utils"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
)

const (
	speechCacheTTL = 24 * time.Hour
	maxSpeechChars = 4096
)

var speechVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}

type SpeechController struct {
	Cfg      *config.Config
	RDB      *redis.Client
	Provider ai.Provider
}

func NewSpeechController(cfg *config.Config, rdb *redis.Client, provider ai.Provider) *SpeechController {
	return &SpeechController{Cfg: cfg, RDB: rdb, Provider: provider}
}

// Synthesize converts lesson text to speech. Identical text and voice pairs
// are served from cache so repeated playback does not hit the provider.
func (sc *SpeechController) Synthesize(c *fiber.Ctx) error {
	_, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	type SpeechInput struct {
		Text  string `json:"text"`
		Voice string `json:"voice"`
	}

	var input SpeechInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Cannot parse JSON",
		})
	}

	input.Text = strings.TrimSpace(input.Text)
	if input.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is required",
		})
	}
	if len(input.Text) > maxSpeechChars {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Text is too long",
		})
	}
	if input.Voice == "" {
		input.Voice = "nova"
	}
	if !speechVoices[input.Voice] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown voice",
		})
	}

	cacheKey := fmt.Sprintf("speech:%x", sha256.Sum256([]byte(input.Voice+"|"+input.Text)))
	if sc.RDB != nil {
		if audio, err := sc.RDB.Get(c.Context(), cacheKey).Bytes(); err == nil {
			c.Set("X-Cache", "hit")
			c.Set(fiber.HeaderContentType, "audio/mpeg")
			return c.Send(audio)
		}
	}

	audio, err := sc.Provider.SynthesizeSpeech(c.Context(), input.Text, input.Voice)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Speech synthesis failed",
		})
	}

	if sc.RDB != nil {
		sc.RDB.Set(c.Context(), cacheKey, audio, speechCacheTTL)
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(audio)
}
