package handlers

import (
	"net/http"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/config"
	"SpeakShift/internal/middleware"
	"SpeakShift/internal/response"
	"SpeakShift/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthHandler: регистрация, вход и управление паролем.
type AuthHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

func NewAuthHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{UserService: userService, Logger: logger, Config: cfg}
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FCMToken string `json:"fcmToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// Register регистрация пользователя
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	_, err := h.UserService.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Logger.Warnw("Register failed", "email", req.Email, "error", err)
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, "User created successfully", nil)
}

// Login вход пользователя: токен возвращается в теле и в cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	user, token, err := h.UserService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		FCMToken: req.FCMToken,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	middleware.SetLoginCookie(w, token, h.Config.IsProduction())
	response.JSON(w, r, http.StatusOK, "User logged in successfully", user, response.WithToken(token))
}

// Logout завершение сессии
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	if err := h.UserService.Logout(r.Context(), user.ID); err != nil {
		response.Error(w, r, err)
		return
	}
	middleware.ClearLoginCookie(w, h.Config.IsProduction())
	response.JSON(w, r, http.StatusOK, "User logged out successfully", nil)
}

// RefreshToken выдаёт новый токен сессии
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	token, err := h.UserService.RefreshToken(r.Context(), user.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	middleware.SetLoginCookie(w, token, h.Config.IsProduction())
	response.JSON(w, r, http.StatusOK, "Token refreshed successfully", nil, response.WithToken(token))
}

// ForgotPassword отправка ссылки для сброса пароля
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if _, err := h.UserService.ForgotPassword(r.Context(), req.Email); err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Reset password url sent successfully", nil)
}

// ResetPassword сброс пароля по токену из ссылки
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.Error(w, r, apperr.BadRequest("Invalid or expired reset token"))
		return
	}
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.UserService.ResetPassword(r.Context(), token, req.Password); err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Password reset successfully", nil)
}

// UpdatePassword смена пароля авторизованным пользователем
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	var req updatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := h.UserService.UpdatePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Password updated successfully", nil)
}
