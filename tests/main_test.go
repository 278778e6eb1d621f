package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"project/backend/ai"
	"project/backend/config"
	"project/backend/models"
	"project/backend/routes"
	"project/backend/utils"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	provider *stubProvider
	testUser models.User
	jwtToken string
)

// stubProvider stands in for the OpenAI client. Failure modes are flipped
// per test through the exported fields.
type stubProvider struct {
	lessonErr error
	tutorErr  error
	answer    string
}

func (s *stubProvider) GenerateLesson(ctx context.Context, req ai.LessonRequest) (*ai.LessonContent, error) {
	if s.lessonErr != nil {
		return nil, s.lessonErr
	}
	content := &ai.LessonContent{
		Topic:      req.Topic,
		LessonText: "A lesson about " + req.Topic,
		Summary:    []string{"Summary of " + req.Topic},
		Quiz: []ai.QuizQuestion{
			{Question: "Q1", Options: []string{"a", "b", "c"}, CorrectAnswer: 1},
			{Question: "Q2", Options: []string{"a", "b"}, CorrectAnswer: 0},
		},
		NextTopics: []ai.NextTopic{
			{Topic: req.Topic + " II", Difficulty: req.Difficulty},
		},
	}
	if req.Exam {
		content.ExamMetadata = &ai.ExamMetadata{DurationMinutes: 30, PassingScore: 60}
	}
	return content, nil
}

func (s *stubProvider) AskTutor(ctx context.Context, req ai.TutorRequest) (string, error) {
	if s.tutorErr != nil {
		return "", s.tutorErr
	}
	if s.answer != "" {
		return s.answer, nil
	}
	return "You asked: " + req.Question, nil
}

func (s *stubProvider) SynthesizeSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	return []byte("mp3-bytes"), nil
}

func (s *stubProvider) AnalyzeDocument(ctx context.Context, fileName, contentType string, data []byte, profile ai.ProfileContext) (string, error) {
	return "Analysis of " + fileName, nil
}

func TestMain(m *testing.M) {
	// Setup
	setup()
	// Run tests
	code := m.Run()
	// Cleanup
	teardown()
	os.Exit(code)
}

func setup() {
	// Load test configuration
	cfg = &config.Config{
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	// Initialize in-memory database
	var err error
	db, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Migrate test database
	db.AutoMigrate(
		&models.User{},
		&models.UserProgress{},
		&models.QuizScore{},
		&models.Lesson{},
		&models.Conversation{},
		&models.ChatMessage{},
		&models.UploadedDocument{},
	)

	// Create test app with a stubbed AI provider and no cache
	provider = &stubProvider{}
	app = fiber.New()
	routes.SetupRoutes(app, db, nil, provider, cfg)

	// Create test user
	testUser, jwtToken = createUser("test@example.com", models.TierFree)
}

func teardown() {
	// Clean up test database
	db.Migrator().DropTable(
		&models.User{},
		&models.UserProgress{},
		&models.QuizScore{},
		&models.Lesson{},
		&models.Conversation{},
		&models.ChatMessage{},
		&models.UploadedDocument{},
	)
}

// createUser inserts an account with an empty learning profile and returns
// it with a valid token. The password is always "password123".
func createUser(email string, tier models.Tier) (models.User, string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := models.User{
		Name:         "testuser",
		Email:        email,
		PasswordHash: string(hash),
		Tier:         tier,
	}
	db.Create(&user)

	progress := models.UserProgress{
		UserID:                user.ID,
		LastQuestionResetDate: time.Now(),
	}
	progress.SetCompletedTopicList(nil)
	progress.SetWeakTopicList(nil)
	db.Create(&progress)

	token, err := utils.GenerateJWTToken(user.ID, cfg)
	if err != nil {
		panic(err)
	}
	return user, token
}

// postJSON sends an authenticated JSON request and decodes the response body.
func postJSON(t *testing.T, method, path, token string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	result := map[string]interface{}{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp, result
}

// loadProgress reads the stored learning profile for a user.
func loadProgress(t *testing.T, userID uint) models.UserProgress {
	t.Helper()
	var p models.UserProgress
	if err := db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	return p
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
