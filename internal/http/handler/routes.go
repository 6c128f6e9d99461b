package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"userapi/internal/database"
	"userapi/internal/http/middleware"
	"userapi/internal/repository"
	"userapi/internal/schema"
)

const (
	userEntity    = "User"
	defaultLimit  = 100
	defaultOffset = 0
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Every /v1 request runs on its own database session.
func RegisterRoutes(app *fiber.App, db *sql.DB, users repository.UserRepository, log *slog.Logger) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	v1 := app.Group("/v1", middleware.Session(db))

	g := v1.Group("/users")
	g.Get("", ListUsers(users, log))
	g.Post("", CreateUser(users, log))
	g.Get("/:id", GetUser(users, log))
	g.Patch("/:id", UpdateUser(users, log))
	g.Delete("/:id", DeleteUser(users, log))
}

// HealthCheck reports whether the database answers a ping.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 as long as the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListUsers godoc
// @Summary Retrieve all users
// @Tags Users
// @Produce json
// @Param limit query int false "Maximum number of users" default(100)
// @Param offset query int false "Number of users to skip" default(0)
// @Success 200 {array} schema.UserResponse
// @Router /v1/users/ [get]
func ListUsers(users repository.UserRepository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := queryInt(c, "limit", defaultLimit)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_LIMIT", "limit must be an integer")
		}
		offset, err := queryInt(c, "offset", defaultOffset)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_OFFSET", "offset must be an integer")
		}

		s, err := session(c)
		if err != nil {
			return writeInternalError(c, log, err)
		}

		items, err := users.ReadMany(c.UserContext(), s, limit, offset)
		if err != nil {
			return writeInternalError(c, log, err)
		}
		return c.JSON(schema.NewUserResponses(items))
	}
}

// GetUser godoc
// @Summary Retrieve a user by ID
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} schema.UserResponse
// @Failure 404 {object} errorPayload
// @Router /v1/users/{id}/ [get]
func GetUser(users repository.UserRepository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := userID(c)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_ID", "id must be an integer")
		}

		s, err := session(c)
		if err != nil {
			return writeInternalError(c, log, err)
		}

		u, found, err := users.ReadByID(c.UserContext(), s, id)
		if err != nil {
			return writeInternalError(c, log, err)
		}
		if !found {
			return writeUserNotFound(c, id)
		}
		return c.JSON(schema.NewUserResponse(u))
	}
}

// CreateUser godoc
// @Summary Create a new user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body schema.UserCreate true "New user"
// @Success 201 {object} schema.UserResponse
// @Failure 422 {object} errorPayload
// @Router /v1/users/ [post]
func CreateUser(users repository.UserRepository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := schema.ParseUserCreate(c.Body())
		if err != nil {
			return writeValidationError(c, err)
		}

		s, err := session(c)
		if err != nil {
			return writeInternalError(c, log, err)
		}

		u, err := users.Create(c.UserContext(), s, data)
		if err != nil {
			return writeInternalError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(schema.NewUserResponse(u))
	}
}

// UpdateUser godoc
// @Summary Update a user by ID
// @Description Only the supplied fields change. At least one field is required.
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} schema.UserResponse
// @Failure 404 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Router /v1/users/{id}/ [patch]
func UpdateUser(users repository.UserRepository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := userID(c)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_ID", "id must be an integer")
		}
		data, err := schema.ParseUserUpdate(c.Body())
		if err != nil {
			return writeValidationError(c, err)
		}

		s, err := session(c)
		if err != nil {
			return writeInternalError(c, log, err)
		}

		u, found, err := users.Update(c.UserContext(), s, data, id)
		if err != nil {
			return writeInternalError(c, log, err)
		}
		if !found {
			return writeUserNotFound(c, id)
		}
		return c.JSON(schema.NewUserResponse(u))
	}
}

// DeleteUser godoc
// @Summary Delete a user by ID
// @Tags Users
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} errorPayload
// @Router /v1/users/{id}/ [delete]
func DeleteUser(users repository.UserRepository, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := userID(c)
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "INVALID_ID", "id must be an integer")
		}

		s, err := session(c)
		if err != nil {
			return writeInternalError(c, log, err)
		}

		if err := users.Remove(c.UserContext(), s, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
			}
			return writeInternalError(c, log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

var errNoSession = errors.New("no database session bound to request")

func session(c *fiber.Ctx) (database.Session, error) {
	s, ok := middleware.SessionFromCtx(c)
	if !ok {
		return nil, errNoSession
	}
	return s, nil
}

// queryInt parses an integer query parameter. An absent key yields def; a key
// present with an empty value is an error, like any other non-integer.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	if !c.Context().QueryArgs().Has(key) {
		return def, nil
	}
	return strconv.Atoi(c.Query(key))
}

func userID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}

func writeUserNotFound(c *fiber.Ctx, id int64) error {
	nf := &repository.ObjectNotFoundError{Entity: userEntity, ID: id}
	return writeError(c, fiber.StatusNotFound, "NOT_FOUND", nf.Error())
}
