package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/middleware"
	"SpeakShift/internal/response"
	"SpeakShift/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
}

func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger}
}

type addressDTO struct {
	Address   *string `json:"address"`
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
	City      *string `json:"city"`
	State     *string `json:"state"`
	Country   *string `json:"country"`
	ZipCode   *string `json:"zipCode"`
}

type updateProfileRequest struct {
	Name      *string     `json:"name" validate:"omitempty,min=1"`
	Email     *string     `json:"email" validate:"omitempty,email"`
	Avatar    *string     `json:"avatar" validate:"omitempty,url"`
	Address   *addressDTO `json:"address"`
	Interests []string    `json:"interests" validate:"omitempty,dive,uuid"`
}

type updateRoleRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=user admin"`
}

// Me профиль текущего пользователя
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.UserFromContext(r.Context())
	user, err := h.UserService.Profile(r.Context(), current.ID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "User profile fetched successfully", user)
}

// UpdateProfile изменение профиля, адреса и интересов
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.UserFromContext(r.Context())
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}

	in := service.ProfileInput{Name: req.Name, Email: req.Email, Avatar: req.Avatar}
	if a := req.Address; a != nil {
		in.Address = &service.AddressInput{
			Address:   a.Address,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
			City:      a.City,
			State:     a.State,
			Country:   a.Country,
			ZipCode:   a.ZipCode,
		}
	}
	if req.Interests != nil {
		in.Interests = make([]uuid.UUID, 0, len(req.Interests))
		for _, s := range req.Interests {
			in.Interests = append(in.Interests, uuid.MustParse(s))
		}
	}

	user, err := h.UserService.UpdateProfile(r.Context(), current.ID, in)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Profile updated successfully", user)
}

// UpdateRole смена роли пользователя (admin)
func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, r, err)
		return
	}
	id, err := uuid.Parse(req.UserID)
	if err != nil {
		response.Error(w, r, fmt.Errorf("%w: %v", apperr.ErrCast, err))
		return
	}
	if err := h.UserService.UpdateRole(r.Context(), id, req.Role); err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Role updated successfully", nil)
}

// GetAllUsers список пользователей с фильтром по email и пагинацией (admin)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	limit := queryInt(q.Get("limit"), 10)

	users, total, err := h.UserService.ListUsers(r.Context(), q.Get("email"), page, limit)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	pagination := response.NewPagination(total, page, limit)
	if len(users) == 0 {
		response.JSON(w, r, http.StatusOK, "No user found", nil, response.WithPagination(pagination))
		return
	}
	response.JSON(w, r, http.StatusOK, "Users fetched successfully", users, response.WithPagination(pagination))
}

// DeleteAccount отключение учётной записи
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.UserFromContext(r.Context())
	if err := h.UserService.DeleteAccount(r.Context(), current.ID); err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, "Account deleted successfully", nil)
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
