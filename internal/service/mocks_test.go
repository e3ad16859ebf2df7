package service

import (
	"context"

	"SpeakShift/internal/model"
	"SpeakShift/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Save(ctx context.Context, u *model.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	return m.Called(ctx, id, fields).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context, filter repo.UserFilter, offset, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockUserRepo) ReplaceInterests(ctx context.Context, u *model.User, ids []uuid.UUID) error {
	return m.Called(ctx, u, ids).Error(0)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.AddressRepository
type mockAddressRepo struct{ mock.Mock }

func (m *mockAddressRepo) Upsert(ctx context.Context, a *model.Address) error {
	return m.Called(ctx, a).Error(0)
}

var _ repo.AddressRepository = (*mockAddressRepo)(nil)
