package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"no names", User{Username: "jdoe"}, "jdoe"},
		{"first only", User{Username: "jdoe", FirstName: "John"}, "John"},
		{"last only", User{Username: "jdoe", LastName: "Doe"}, "Doe"},
		{"both", User{Username: "jdoe", FirstName: "John", LastName: "Doe"}, "John Doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
			assert.Equal(t, tt.want, tt.user.String())
		})
	}
}
