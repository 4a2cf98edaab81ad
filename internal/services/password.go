package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// unusablePasswordPrefix marks a stored hash that can never verify.
const unusablePasswordPrefix = "!"

const unusablePasswordLength = 40

// maxPasswordBytes is the bcrypt input limit.
const maxPasswordBytes = 72

var errPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost. Tests use
// bcrypt.MinCost; cost <= 0 selects bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", errPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Unusable returns a random marker for accounts created without a password.
func (h *PasswordHasher) Unusable() string {
	random := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	return unusablePasswordPrefix + random[:unusablePasswordLength]
}

// Verify reports whether password matches hash. Unusable markers never match.
func (h *PasswordHasher) Verify(hash, password string) bool {
	if hash == "" || strings.HasPrefix(hash, unusablePasswordPrefix) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IsUsablePassword reports whether hash was produced from a real password.
func IsUsablePassword(hash string) bool {
	return hash != "" && !strings.HasPrefix(hash, unusablePasswordPrefix)
}
