package postgres

import (
	"userapi/internal/model"
	"userapi/internal/repository"
	"userapi/internal/schema"
)

// UserPostgres is the PostgreSQL implementation of repository.UserRepository.
type UserPostgres = Repository[model.User, schema.UserCreate, schema.UserUpdate]

var _ repository.UserRepository = (*UserPostgres)(nil)

// UserMapping maps model.User onto the "user" table.
func UserMapping() Mapping[model.User, schema.UserCreate, schema.UserUpdate] {
	return Mapping[model.User, schema.UserCreate, schema.UserUpdate]{
		Entity:  "User",
		Table:   "user",
		ID:      "id",
		Columns: []string{"name", "email", "phone", "note"},
		Scan: func(s Scanner) (model.User, error) {
			var u model.User
			err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Note)
			return u, err
		},
		CreateValues: func(c schema.UserCreate) []any {
			return []any{c.Name, c.Email, c.Phone, c.Note}
		},
		UpdateValues: func(u schema.UserUpdate) []Assignment {
			fields := []struct {
				column string
				value  schema.Optional[string]
			}{
				{"name", u.Name},
				{"email", u.Email},
				{"phone", u.Phone},
				{"note", u.Note},
			}
			var out []Assignment
			for _, f := range fields {
				if v, ok := f.value.Get(); ok {
					out = append(out, Assignment{Column: f.column, Value: v})
				}
			}
			return out
		},
	}
}

// NewUserRepository creates the User repository. The process builds it once and shares it.
func NewUserRepository() *UserPostgres {
	return New(UserMapping())
}
