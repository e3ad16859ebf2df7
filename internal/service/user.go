package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SpeakShift/internal/apperr"
	"SpeakShift/internal/auth"
	"SpeakShift/internal/mailer"
	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const userCacheSize = 1024

// UserServiceConfig: параметры UserService из конфигурации.
type UserServiceConfig struct {
	FrontendURL      string
	ResetTokenExpire time.Duration
	CacheTTL         time.Duration
}

// UserService инкапсулирует бизнес-логику учётных записей.
type UserService struct {
	users     repo.UserRepository
	addresses repo.AddressRepository
	issuer    *auth.Issuer
	mail      mailer.Sender
	cfg       UserServiceConfig
	logger    *zap.SugaredLogger

	cache *expirable.LRU[uuid.UUID, *model.User]
}

func NewUserService(
	users repo.UserRepository,
	addresses repo.AddressRepository,
	issuer *auth.Issuer,
	mail mailer.Sender,
	cfg UserServiceConfig,
	logger *zap.SugaredLogger,
) *UserService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	return &UserService{
		users:     users,
		addresses: addresses,
		issuer:    issuer,
		mail:      mail,
		cfg:       cfg,
		logger:    logger,
		cache:     expirable.NewLRU[uuid.UUID, *model.User](userCacheSize, nil, cfg.CacheTTL),
	}
}

type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
}

// Register создаёт пользователя с ролью user и хешированным паролем.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.BadRequest("User already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Username
	}
	u := &model.User{
		Name:     name,
		Username: in.Username,
		Email:    email,
		Password: hash,
		Role:     model.RoleUser,
		Status:   model.StatusActive,
		Avatar:   model.AvatarURL(name),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

type LoginInput struct {
	Email    string
	Password string
	FCMToken string
}

// Login проверяет учётные данные и открывает сессию: выданный токен сохраняется у пользователя.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*model.User, string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user by email: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)) != nil {
		return nil, "", apperr.Unauthorized("Invalid credentials")
	}
	if !u.Active() {
		return nil, "", apperr.Forbidden("Your account is disabled")
	}

	token, err := s.issuer.Issue(u.ID, 0)
	if err != nil {
		return nil, "", err
	}
	u.JWTToken = token
	u.IsLoggedIn = true
	if in.FCMToken != "" {
		u.FCMToken = in.FCMToken
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, "", fmt.Errorf("save session: %w", err)
	}
	s.invalidate(u.ID)
	return u, token, nil
}

// Logout закрывает сессию: токены очищаются, старый JWT больше не принимается.
func (s *UserService) Logout(ctx context.Context, userID uuid.UUID) error {
	defer s.invalidate(userID)
	return s.users.UpdateFields(ctx, userID, map[string]any{
		"jwt_token":    "",
		"fcm_token":    "",
		"is_logged_in": false,
	})
}

// RefreshToken выпускает новый токен и делает его текущим для сессии.
func (s *UserService) RefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.issuer.Issue(userID, 0)
	if err != nil {
		return "", err
	}
	defer s.invalidate(userID)
	if err := s.users.UpdateFields(ctx, userID, map[string]any{"jwt_token": token, "is_logged_in": true}); err != nil {
		return "", err
	}
	return token, nil
}

// ForgotPassword выпускает токен сброса и отправляет ссылку на почту.
// Каждый вызов выдаёт новый токен; действителен только последний.
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.NotFound("User not found")
	}
	if err != nil {
		return "", fmt.Errorf("find user by email: %w", err)
	}

	token, err := s.issuer.Issue(u.ID, s.cfg.ResetTokenExpire)
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateFields(ctx, u.ID, map[string]any{"reset_password_token": token}); err != nil {
		return "", err
	}
	s.invalidate(u.ID)

	link := fmt.Sprintf("%s/password/reset/%s", s.cfg.FrontendURL, token)
	body := fmt.Sprintf("Hello %s,\n\nUse the link below to reset your password:\n%s\n\nThe link expires in %s.\n", u.Name, link, s.cfg.ResetTokenExpire)
	if err := s.mail.Send(ctx, u.Email, "Password reset", body); err != nil {
		return "", fmt.Errorf("send reset link: %w", err)
	}
	return token, nil
}

// ResetPassword меняет пароль по токену сброса. Токен одноразовый, активная сессия закрывается.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := s.issuer.Parse(token)
	if err != nil {
		return err
	}
	id, err := claims.UserUUID()
	if err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return err
	}
	if u.ResetPasswordToken == "" || u.ResetPasswordToken != token {
		return apperr.BadRequest("Invalid or expired reset token")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	defer s.invalidate(id)
	return s.users.UpdateFields(ctx, id, map[string]any{
		"password":             hash,
		"reset_password_token": "",
		"jwt_token":            "",
		"is_logged_in":         false,
	})
}

// UpdatePassword меняет пароль после проверки текущего.
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)) != nil {
		return apperr.Unauthorized("Invalid password")
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	defer s.invalidate(userID)
	return s.users.UpdateFields(ctx, userID, map[string]any{"password": hash})
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

type AddressInput struct {
	Address   *string
	Latitude  *string
	Longitude *string
	City      *string
	State     *string
	Country   *string
	ZipCode   *string
}

// ProfileInput: изменяемые поля профиля. nil — поле не меняется.
type ProfileInput struct {
	Name      *string
	Email     *string
	Avatar    *string
	Address   *AddressInput
	Interests []uuid.UUID
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.User, error) {
	defer s.invalidate(userID)

	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		fields["email"] = normalizeEmail(*in.Email)
	}
	if in.Avatar != nil {
		fields["avatar"] = *in.Avatar
	}
	if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if in.Address != nil {
		a := in.Address
		if err := s.addresses.Upsert(ctx, &model.Address{
			UserID:    userID,
			Address:   a.Address,
			Latitude:  a.Latitude,
			Longitude: a.Longitude,
			City:      a.City,
			State:     a.State,
			Country:   a.Country,
			ZipCode:   a.ZipCode,
		}); err != nil {
			return nil, fmt.Errorf("upsert address: %w", err)
		}
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Interests != nil {
		if err := s.users.ReplaceInterests(ctx, u, in.Interests); err != nil {
			return nil, fmt.Errorf("replace interests: %w", err)
		}
	}
	return u, nil
}

// UpdateRole назначает роль пользователю (только для администратора).
func (s *UserService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	if role != model.RoleUser && role != model.RoleAdmin {
		return apperr.BadRequest("Invalid role")
	}
	defer s.invalidate(userID)
	err := s.users.UpdateFields(ctx, userID, map[string]any{"role": role})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("User not found")
	}
	return err
}

// ListUsers возвращает страницу пользователей; page начинается с 1.
func (s *UserService) ListUsers(ctx context.Context, email string, page, limit int) ([]model.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.users.List(ctx, repo.UserFilter{Email: email}, (page-1)*limit, limit)
}

// DeleteAccount отключает учётную запись и закрывает сессию. Данные не удаляются.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	defer s.invalidate(userID)
	return s.users.UpdateFields(ctx, userID, map[string]any{
		"disabled":     true,
		"jwt_token":    "",
		"fcm_token":    "",
		"is_logged_in": false,
	})
}

// LoadActiveUser возвращает пользователя для авторизации запроса.
// Результат кешируется на CacheTTL и сбрасывается при любом изменении через сервис.
func (s *UserService) LoadActiveUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	u, ok := s.cache.Get(userID)
	if !ok {
		loaded, err := s.users.GetByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("You are not authorized")
		}
		if err != nil {
			return nil, err
		}
		s.cache.Add(userID, loaded)
		u = loaded
	}
	if !u.Active() {
		return nil, apperr.Unauthorized("You are not authorized")
	}
	cp := *u
	return &cp, nil
}

func (s *UserService) invalidate(userID uuid.UUID) {
	s.cache.Remove(userID)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
