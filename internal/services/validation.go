package services

import (
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	maxUsernameLength = 150
	maxNameLength     = 150
	maxEmailLength    = 254
)

const (
	MsgRequired       = "This field is required."
	MsgBlank          = "This field may not be blank."
	MsgUsernameTaken  = "A user with that username already exists."
	MsgInvalidUser    = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgInvalidEmail   = "Enter a valid email address."
	MsgPasswordTooBig = "Ensure this field has no more than 72 bytes."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// ValidationError carries field-level messages. It is rendered as
// {"field": ["message", ...]}.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an error with a single field message.
func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, message)
	return e
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Err returns nil when no message was added.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NormalizeUsername applies NFKC so visually identical names collide.
func NormalizeUsername(username string) string {
	return norm.NFKC.String(username)
}

// NormalizeEmail lowercases the domain part and leaves the local part alone.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func validateUsername(errs *ValidationError, username string) {
	switch {
	case username == "":
		errs.Add("username", MsgBlank)
	case utf8.RuneCountInString(username) > maxUsernameLength:
		errs.Add("username", maxLengthMessage(maxUsernameLength))
	case !usernamePattern.MatchString(username):
		errs.Add("username", MsgInvalidUser)
	}
}

func validateName(errs *ValidationError, field, value string) {
	if utf8.RuneCountInString(value) > maxNameLength {
		errs.Add(field, maxLengthMessage(maxNameLength))
	}
}

func validateEmail(errs *ValidationError, email string) {
	if email == "" {
		return
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		errs.Add("email", maxLengthMessage(maxEmailLength))
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		errs.Add("email", MsgInvalidEmail)
	}
}

func maxLengthMessage(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}
