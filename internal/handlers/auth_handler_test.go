package handlers_test

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"SpeakShift/internal/audit"
	"SpeakShift/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Sam", "username": "sam", "email": "s@x.com", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	m := decode(t, rr)
	assert.EqualValues(t, 1, m["status"])
	assert.EqualValues(t, 201, m["statusCode"])
	assert.Equal(t, "User created successfully", m["message"])
	// тело ответа без данных пользователя
	assert.Len(t, m, 3)

	var u model.User
	require.NoError(t, e.db.Where("email = ?", "s@x.com").First(&u).Error)
	assert.NotEqual(t, "secret1", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret1")))
	assert.Equal(t, model.RoleUser, u.Role)

	logs := e.logs(t, "Register")
	require.Len(t, logs, 1)
	assert.Equal(t, audit.SuccessMessage, logs[0].Message)
	assert.NotContains(t, string(logs[0].Request), "secret1")
}

func TestRegister_Duplicate(t *testing.T) {
	e := newTestEnv(t)
	body := map[string]string{"username": "sam", "email": "s@x.com", "password": "secret1"}

	require.Equal(t, http.StatusCreated, e.do(t, http.MethodPost, "/api/v1/auth/register", body, "").Code)
	rr := e.do(t, http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User already exists", decode(t, rr)["message"])

	logs := e.logs(t, "Register")
	require.Len(t, logs, 2)
	assert.Equal(t, "User already exists", logs[1].Message)
	assertSiteLine(t, logs[1], "../service", `"User already exists"`)

	// тот же username с другим email — нарушение уникального индекса
	body["email"] = "other@x.com"
	rr = e.do(t, http.MethodPost, "/api/v1/auth/register", body, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Duplicate field value: username", decode(t, rr)["message"])
}

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{"username": "sam", "password": "secret1"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Validation error: email is required", decode(t, rr)["message"])
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newTestEnv(t)
	e.signUp(t, "sam", "s@x.com", "secret1")

	rr := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "s@x.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	m := decode(t, rr)
	assert.EqualValues(t, 0, m["status"])
	assert.Equal(t, "Invalid credentials", m["message"])
	_, hasToken := m["token"]
	assert.False(t, hasToken)

	logs := e.logs(t, "Login")
	require.Len(t, logs, 2)
	failed := logs[1]
	assert.Equal(t, "Invalid credentials", failed.Message)
	assertSiteLine(t, failed, "../service", `"Invalid credentials"`)
}

func TestSession_LogoutInvalidatesToken(t *testing.T) {
	e := newTestEnv(t)
	token := e.signUp(t, "sam", "s@x.com", "secret1")

	rr := e.do(t, http.MethodGet, "/api/v1/user/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "User profile fetched successfully", decode(t, rr)["message"])

	// запись аудита привязана к пользователю
	me := e.logs(t, "Me")
	require.Len(t, me, 1)
	assert.NotNil(t, me[0].UserID)

	rr = e.do(t, http.MethodGet, "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "User logged out successfully", decode(t, rr)["message"])

	rr = e.do(t, http.MethodGet, "/api/v1/user/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRefreshToken_RotatesSession(t *testing.T) {
	e := newTestEnv(t)
	old := e.signUp(t, "sam", "s@x.com", "secret1")

	rr := e.do(t, http.MethodGet, "/api/v1/auth/refresh-token", nil, old)
	require.Equal(t, http.StatusOK, rr.Code)
	fresh, _ := decode(t, rr)["token"].(string)
	require.NotEmpty(t, fresh)
	assert.NotEqual(t, old, fresh)

	assert.Equal(t, http.StatusUnauthorized, e.do(t, http.MethodGet, "/api/v1/user/me", nil, old).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/user/me", nil, fresh).Code)
}

var resetLinkRe = regexp.MustCompile(`https://app\.example\.com/password/reset/(\S+)`)

// Второй запрос сброса выдаёт новый токен, первый перестаёт действовать.
func TestForgotPassword_OnlyLatestTokenResets(t *testing.T) {
	e := newTestEnv(t)
	e.signUp(t, "sam", "s@x.com", "secret1")

	for i := 0; i < 2; i++ {
		rr := e.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"email": "s@x.com"}, "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, "Reset password url sent successfully", decode(t, rr)["message"])
	}

	sent := e.mail.Sent()
	require.Len(t, sent, 2)
	first := resetLinkRe.FindStringSubmatch(sent[0].Body)
	second := resetLinkRe.FindStringSubmatch(sent[1].Body)
	require.Len(t, first, 2)
	require.Len(t, second, 2)
	assert.NotEqual(t, first[1], second[1])

	rr := e.do(t, http.MethodPost, "/api/v1/auth/reset-password/"+first[1], map[string]string{"password": "brand-new"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do(t, http.MethodPost, "/api/v1/auth/reset-password/"+second[1], map[string]string{"password": "brand-new"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Password reset successfully", decode(t, rr)["message"])

	// токен одноразовый
	rr = e.do(t, http.MethodPost, "/api/v1/auth/reset-password/"+second[1], map[string]string{"password": "again-new"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	e.login(t, "s@x.com", "brand-new")
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(t, http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{"email": "ghost@x.com"}, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Empty(t, e.mail.Sent())
}

func TestUpdatePassword(t *testing.T) {
	e := newTestEnv(t)
	token := e.signUp(t, "sam", "s@x.com", "secret1")

	rr := e.do(t, http.MethodPost, "/api/v1/auth/update-password", map[string]string{
		"oldPassword": "wrong", "newPassword": "secret2",
	}, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid password", decode(t, rr)["message"])

	rr = e.do(t, http.MethodPost, "/api/v1/auth/update-password", map[string]string{
		"oldPassword": "secret1", "newPassword": "secret2",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	e.login(t, "s@x.com", "secret2")
}

func TestProtectedRoute_NoToken(t *testing.T) {
	e := newTestEnv(t)
	rr := e.do(t, http.MethodGet, "/api/v1/user/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "You are not authorized", decode(t, rr)["message"])
}

// assertSiteLine проверяет, что файл и строка записи аудита указывают на одно место:
// строка файла dir/<File> содержит fragment.
func assertSiteLine(t *testing.T, entry model.Log, dir, fragment string) {
	t.Helper()
	require.NotNil(t, entry.LineNo)
	src, err := os.ReadFile(filepath.Join(dir, entry.File))
	require.NoError(t, err, entry.File)
	lines := strings.Split(string(src), "\n")
	require.Less(t, *entry.LineNo-1, len(lines))
	assert.Contains(t, lines[*entry.LineNo-1], fragment, "%s:%d", entry.File, *entry.LineNo)
}
