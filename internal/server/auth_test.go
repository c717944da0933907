package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yatube-dev/yatube/backend/internal/middleware"
	"github.com/yatube-dev/yatube/backend/internal/models"
)

func TestSignupCreatesUserAndIssuesToken(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/auth/signup", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"password123"},
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "token")

	var user models.User
	require.NoError(t, app.db.Where("username = ?", "alice").First(&user).Error)
	assert.NotEqual(t, "password123", user.Password, "password must be stored hashed")

	// A session cookie is set so browser navigation stays logged in.
	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.CookieName && cookie.Value != "" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestSignupDuplicateUsernameFails(t *testing.T) {
	app := setupApp(t)
	app.createUser(t, "alice")

	w := app.do(t, http.MethodPost, "/auth/signup", url.Values{
		"username": {"alice"},
		"email":    {"other@example.com"},
		"password": {"password123"},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignupShortPasswordFailsValidation(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/auth/signup", url.Values{
		"username": {"alice"},
		"email":    {"alice@example.com"},
		"password": {"abc"},
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	app.db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}

func TestLoginWithValidCredentials(t *testing.T) {
	app := setupApp(t)
	app.createUser(t, "alice")

	w := app.do(t, http.MethodPost, "/auth/login", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token")
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	app := setupApp(t)
	app.createUser(t, "alice")

	w := app.do(t, http.MethodPost, "/auth/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginHonorsNextParameter(t *testing.T) {
	app := setupApp(t)
	app.createUser(t, "alice")

	w := app.do(t, http.MethodPost, "/auth/login?next=%2Fcreate", url.Values{
		"username": {"alice"},
		"password": {"password123"},
	}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create", w.Header().Get("Location"))
}

func TestPasswordChange(t *testing.T) {
	app := setupApp(t)
	alice := app.createUser(t, "alice")

	w := app.do(t, http.MethodPost, "/auth/password_change", url.Values{
		"old_password": {"password123"},
		"new_password": {"newpassword456"},
	}, &alice)

	require.Equal(t, http.StatusOK, w.Code)

	var reloaded models.User
	require.NoError(t, app.db.First(&reloaded, alice.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(reloaded.Password), []byte("newpassword456")))
}

func TestPasswordChangeWrongOldPassword(t *testing.T) {
	app := setupApp(t)
	alice := app.createUser(t, "alice")

	w := app.do(t, http.MethodPost, "/auth/password_change", url.Values{
		"old_password": {"nope"},
		"new_password": {"newpassword456"},
	}, &alice)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPasswordChangeRequiresAuth(t *testing.T) {
	app := setupApp(t)

	w := app.do(t, http.MethodPost, "/auth/password_change", url.Values{
		"old_password": {"password123"},
		"new_password": {"newpassword456"},
	}, nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/auth/login/?next=")
}

func TestPasswordResetAlwaysAnswersTheSame(t *testing.T) {
	app := setupApp(t)
	app.createUser(t, "alice")

	known := app.do(t, http.MethodPost, "/auth/password_reset", url.Values{
		"email": {"alice@example.com"},
	}, nil)
	unknown := app.do(t, http.MethodPost, "/auth/password_reset", url.Values{
		"email": {"stranger@example.com"},
	}, nil)

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestLogoutClearsCookie(t *testing.T) {
	app := setupApp(t)
	alice := app.createUser(t, "alice")

	w := app.do(t, http.MethodPost, "/auth/logout", nil, &alice)
	require.Equal(t, http.StatusOK, w.Code)

	cleared := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
