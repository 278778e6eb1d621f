package tests

import (
	"project/backend/models"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	email := uniqueEmail("newuser")
	resp, result := postJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     "newuser",
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, result["token"])
	assert.NotEmpty(t, result["user"])

	// A fresh account starts with an empty learning profile on the free tier
	var user models.User
	assert.NoError(t, db.Where("email = ?", email).First(&user).Error)
	assert.Equal(t, models.TierFree, user.Tier)

	progress := loadProgress(t, user.ID)
	assert.Equal(t, 0, progress.LearningProgress)
	assert.Equal(t, 0, progress.Streak)
	assert.Equal(t, 0, progress.DailyQuestionCount)
	assert.Nil(t, progress.LastActiveDate)
	assert.Empty(t, progress.CompletedTopicList())
	assert.Empty(t, progress.WeakTopicList())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	email := uniqueEmail("dupe")
	resp, _ := postJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     "dupe",
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result := postJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     "dupe",
		"email":    email,
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", result["error"])
}

func TestRegisterValidation(t *testing.T) {
	resp, _ := postJSON(t, "POST", "/api/auth/register", "", map[string]string{
		"name":     "x",
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	resp, result := postJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    testUser.Email,
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, result["token"])
	assert.NotEmpty(t, result["user"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	// Wrong password and unknown account must be indistinguishable
	resp, result := postJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    testUser.Email,
		"password": "wrongpassword",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", result["error"])

	resp, result = postJSON(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid credentials", result["error"])
}

func TestGetProfile(t *testing.T) {
	resp, result := postJSON(t, "GET", "/api/user/profile", jwtToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["success"])

	data := result["data"].(map[string]interface{})
	assert.Equal(t, testUser.Email, data["email"])
	assert.Equal(t, string(models.TierFree), data["tier"])

	quota := data["quota"].(map[string]interface{})
	assert.Equal(t, float64(100), quota["daily_question_limit"])
}

func TestGetProfileUnauthorized(t *testing.T) {
	resp, _ := postJSON(t, "GET", "/api/user/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	user, token := createUser(uniqueEmail("rename"), models.TierFree)

	resp, result := postJSON(t, "PUT", "/api/user/profile", token, map[string]string{
		"name": "renamed",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := result["data"].(map[string]interface{})
	assert.Equal(t, "renamed", updated["name"])
	assert.Equal(t, user.Email, updated["email"])
}

func TestUpdateProfileEmailImmutable(t *testing.T) {
	user, token := createUser(uniqueEmail("immutable"), models.TierFree)

	resp, result := postJSON(t, "PUT", "/api/user/profile", token, map[string]string{
		"email": "changed@example.com",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email cannot be changed", result["message"])

	var stored models.User
	db.First(&stored, user.ID)
	assert.Equal(t, user.Email, stored.Email)
}
