package repo

import (
	"context"
	"strings"

	"SpeakShift/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserFilter: условия выборки пользователей для администратора.
type UserFilter struct {
	Email string // подстрока email, без учёта регистра
}

// UserRepository определяет контракт доступа к пользователям для слоя сервиса.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// Save сохраняет все поля пользователя (без ассоциаций).
	Save(ctx context.Context, u *model.User) error
	// UpdateFields точечно обновляет колонки. Пустые строки и false тоже записываются.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]model.User, int64, error)
	ReplaceInterests(ctx context.Context, u *model.User, interestIDs []uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).
		Preload("Address").
		Preload("Interests").
		First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Save(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(u).Error
}

func (r *userRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List возвращает страницу пользователей (новые первыми) и общее число подходящих записей.
func (r *userRepo) List(ctx context.Context, filter UserFilter, offset, limit int) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	// email хранится в нижнем регистре, фильтр по точному совпадению
	if e := strings.TrimSpace(filter.Email); e != "" {
		q = q.Where("email = ?", strings.ToLower(e))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ReplaceInterests заменяет набор интересов пользователя. Неизвестные id игнорируются.
func (r *userRepo) ReplaceInterests(ctx context.Context, u *model.User, interestIDs []uuid.UUID) error {
	assoc := r.db.WithContext(ctx).Model(u).Association("Interests")
	if len(interestIDs) == 0 {
		if err := assoc.Clear(); err != nil {
			return err
		}
		u.Interests = nil
		return nil
	}

	var interests []model.Interest
	if err := r.db.WithContext(ctx).Where("id IN ?", interestIDs).Find(&interests).Error; err != nil {
		return err
	}
	if err := assoc.Replace(interests); err != nil {
		return err
	}
	u.Interests = interests
	return nil
}
