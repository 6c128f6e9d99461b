package repository

import (
	"userapi/internal/model"
	"userapi/internal/schema"
)

// UserRepository binds the generic CRUD contract to the User entity and its schemas.
// It adds no behavior of its own.
type UserRepository = CRUD[model.User, schema.UserCreate, schema.UserUpdate]
