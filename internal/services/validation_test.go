package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John@example.com", NormalizeEmail(" John@EXAMPLE.com "))
	assert.Equal(t, "a@b@example.com", NormalizeEmail("a@b@Example.COM"))
	assert.Equal(t, "no-at-sign", NormalizeEmail("no-at-sign"))
	assert.Equal(t, "", NormalizeEmail(""))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "admin", NormalizeUsername("ａｄｍｉｎ"))
	assert.Equal(t, "fi", NormalizeUsername("ﬁ"))
}

func TestValidateUsernameAcceptsUnicodeLetters(t *testing.T) {
	for _, name := range []string{"jürgen", "user.name+tag@host", "δοκιμή_1", "a-b"} {
		errs := &ValidationError{}
		validateUsername(errs, name)
		assert.NoError(t, errs.Err(), name)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	errs := &ValidationError{}
	require.NoError(t, errs.Err())

	errs.Add("username", MsgBlank)
	errs.Add("email", MsgInvalidEmail)

	err := errs.Err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: email: Enter a valid email address.; username: This field may not be blank.", err.Error())
}
