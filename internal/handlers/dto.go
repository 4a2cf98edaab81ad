package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/jjudge-oj/userapi/internal/services"
	"github.com/jjudge-oj/userapi/types"
)

const maxBodyBytes = 1 << 20

// UserResponse is the public representation of a user. It never carries the
// password hash.
type UserResponse struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	IsStaff     bool      `json:"is_staff"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
}

func NewUserResponse(user types.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		IsStaff:     user.IsStaff,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
		DateJoined:  user.DateJoined,
	}
}

func newUserResponses(users []types.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, NewUserResponse(user))
	}
	return out
}

// CreateUserRequest is the body of POST /users/.
type CreateUserRequest struct {
	Username    *string `json:"username"`
	Password    *string `json:"password"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Email       string  `json:"email"`
	IsStaff     *bool   `json:"is_staff"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

func (req CreateUserRequest) toInput() (services.CreateUserInput, error) {
	if req.Username == nil {
		return services.CreateUserInput{}, services.NewValidationError("username", services.MsgRequired)
	}
	return services.CreateUserInput{
		Username:    *req.Username,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		IsActive:    req.IsActive,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	}, nil
}

// UpdateUserRequest is the body of PUT and PATCH /users/{id}/. Username and
// password are not accepted here and are ignored when sent.
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	IsStaff     *bool   `json:"is_staff"`
	IsActive    *bool   `json:"is_active"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// toPatch drops the elevation flags unless actor is a superuser.
func (req UpdateUserRequest) toPatch(actor Actor) services.UserPatch {
	patch := services.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		IsActive:  req.IsActive,
	}
	if actor.IsSuperuser {
		patch.IsStaff = req.IsStaff
		patch.IsSuperuser = req.IsSuperuser
	}
	return patch
}

type parseError struct {
	err error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("JSON parse error - %v", e.err)
}

var errTrailingData = errors.New("unexpected data after top-level value")

// decodeBody reads a single JSON object into dst. An empty body decodes as {}.
// A value of the wrong JSON type is reported against its field.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		var extra json.RawMessage
		switch err := dec.Decode(&extra); {
		case errors.Is(err, io.EOF):
			return nil
		case err == nil:
			return &parseError{err: errTrailingData}
		default:
			return &parseError{err: err}
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return services.NewValidationError("non_field_errors",
				fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", typeErr.Value))
		}
		return services.NewValidationError(typeErr.Field, typeMessage(typeErr.Type))
	}
	return &parseError{err: err}
}

func typeMessage(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "Invalid value."
	}
	switch t.Kind() {
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.String:
		return "Not a valid string."
	}
	return "Invalid value."
}

// writeDecodeError renders an error returned by decodeBody.
func writeDecodeError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		writeValidationError(w, verr)
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}
