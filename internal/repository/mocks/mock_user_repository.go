package mocks

import (
	"context"

	"userapi/internal/database"
	"userapi/internal/model"
	"userapi/internal/repository"
	"userapi/internal/schema"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) ReadByID(ctx context.Context, s database.Session, id int64) (model.User, bool, error) {
	args := m.Called(ctx, s, id)
	return args.Get(0).(model.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) ReadMany(ctx context.Context, s database.Session, limit, offset int) ([]model.User, error) {
	args := m.Called(ctx, s, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, s database.Session, data schema.UserCreate) (model.User, error) {
	args := m.Called(ctx, s, data)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, s database.Session, data schema.UserUpdate, id int64) (model.User, bool, error) {
	args := m.Called(ctx, s, data, id)
	return args.Get(0).(model.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) Remove(ctx context.Context, s database.Session, id int64) error {
	args := m.Called(ctx, s, id)
	return args.Error(0)
}
