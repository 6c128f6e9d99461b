package middleware

import (
	"context"
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/database"
)

// SessionLocalKey is the key under which the request's database session is stored in locals.
const SessionLocalKey = "db_session"

// Session borrows one database connection for the lifetime of the request and
// returns it to the pool on every exit path.
func Session(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return database.WithSession(c.UserContext(), db, func(ctx context.Context, s database.Session) error {
			c.Locals(SessionLocalKey, s)
			defer c.Locals(SessionLocalKey, nil)
			return c.Next()
		})
	}
}

// SessionFromCtx returns the session stored by Session.
func SessionFromCtx(c *fiber.Ctx) (database.Session, bool) {
	s, ok := c.Locals(SessionLocalKey).(database.Session)
	return s, ok && s != nil
}
