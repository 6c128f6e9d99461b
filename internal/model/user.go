package model

// User represents a person record stored in the "user" table.
// ID is assigned by the database on insert and never changes afterwards.
// This is a pure domain model with no database-specific dependencies or tags.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}
