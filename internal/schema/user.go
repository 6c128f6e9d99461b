// Package schema validates and shapes user data crossing the HTTP boundary.
// It performs no I/O.
package schema

import (
	"bytes"
	"encoding/json"

	"userapi/internal/model"
)

const (
	fieldName  = "name"
	fieldEmail = "email"
	fieldPhone = "phone"
	fieldNote  = "note"
)

// userFields lists the business fields in the order errors are reported.
var userFields = []string{fieldName, fieldEmail, fieldPhone, fieldNote}

const msgEmptyUpdate = "Please specify at least one field to change."

// UserCreate is a fully validated creation payload. Email holds the normalized address.
type UserCreate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// Validate checks the email and returns a copy carrying its normalized form.
func (c UserCreate) Validate() (UserCreate, error) {
	email, err := NormalizeEmail(c.Email)
	if err != nil {
		return UserCreate{}, newValidationError(fieldEmail, invalidEmail(err))
	}
	c.Email = email
	return c, nil
}

// ParseUserCreate decodes a JSON object carrying all four business fields as non-null strings.
func ParseUserCreate(body []byte) (UserCreate, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return UserCreate{}, err
	}

	verr := &ValidationError{}
	values := make(map[string]string, len(userFields))
	for _, f := range userFields {
		msg, ok := raw[f]
		if !ok {
			verr.add(f, "field required")
			continue
		}
		v, problem := decodeString(msg)
		if problem != "" {
			verr.add(f, problem)
			continue
		}
		values[f] = v
	}
	if err := verr.orNil(); err != nil {
		return UserCreate{}, err
	}

	return UserCreate{
		Name:  values[fieldName],
		Email: values[fieldEmail],
		Phone: values[fieldPhone],
		Note:  values[fieldNote],
	}.Validate()
}

// UserUpdate is a validated partial update. Absent fields leave the stored value unchanged.
type UserUpdate struct {
	Name  Optional[string]
	Email Optional[string]
	Phone Optional[string]
	Note  Optional[string]
}

// IsEmpty reports whether no field is present.
func (u UserUpdate) IsEmpty() bool {
	return !u.Name.IsSet() && !u.Email.IsSet() && !u.Phone.IsSet() && !u.Note.IsSet()
}

// ParseUserUpdate decodes a JSON object carrying any subset of the business fields.
// A payload without any of them is rejected before the fields themselves are inspected.
// Unknown keys are ignored and explicit nulls are rejected.
func ParseUserUpdate(body []byte) (UserUpdate, error) {
	raw, err := decodeObject(body)
	if err != nil {
		return UserUpdate{}, err
	}

	present := 0
	for _, f := range userFields {
		if _, ok := raw[f]; ok {
			present++
		}
	}
	if present == 0 {
		return UserUpdate{}, newValidationError("body", msgEmptyUpdate)
	}

	var u UserUpdate
	verr := &ValidationError{}
	targets := map[string]*Optional[string]{
		fieldName:  &u.Name,
		fieldEmail: &u.Email,
		fieldPhone: &u.Phone,
		fieldNote:  &u.Note,
	}
	for _, f := range userFields {
		msg, ok := raw[f]
		if !ok {
			continue
		}
		v, problem := decodeString(msg)
		if problem != "" {
			verr.add(f, problem)
			continue
		}
		if f == fieldEmail {
			if v, err = NormalizeEmail(v); err != nil {
				verr.add(f, invalidEmail(err))
				continue
			}
		}
		*targets[f] = Some(v)
	}
	if err := verr.orNil(); err != nil {
		return UserUpdate{}, err
	}
	return u, nil
}

// UserResponse is the outgoing representation of a stored user.
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}

// NewUserResponse shapes a stored user for output.
func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Note:  u.Note,
	}
}

// NewUserResponses shapes a list of stored users; the result is never nil.
func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

func invalidEmail(err error) string {
	return "value is not a valid email address: " + err.Error()
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, newValidationError("body", "request body must be a JSON object")
	}
	return raw, nil
}

// decodeString returns the string held by msg, or a description of why it is not one.
func decodeString(msg json.RawMessage) (string, string) {
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		return "", "field may not be null"
	}
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		return "", "field must be a string"
	}
	return s, ""
}
