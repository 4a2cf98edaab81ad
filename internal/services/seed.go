package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jjudge-oj/userapi/internal/store"
	"go.uber.org/zap"
)

const (
	SeedAdminUsername = "admin"
	SeedAdminEmail    = "admin@example.com"
	SeedPassword      = "123"

	// SeedUserCount is both the threshold and the batch size of fake users.
	SeedUserCount = 100
)

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated bool
	Created      int
	Skipped      int
}

// FakeUserInput builds a random account the way the seed command does.
func FakeUserInput(f *gofakeit.Faker, password string) CreateUserInput {
	isStaff := f.Number(1, 100) <= 50
	isSuperuser := f.Number(1, 100) <= 20
	isActive := true
	now := time.Now().UTC()

	return CreateUserInput{
		Username:    f.Username(),
		Email:       f.Email(),
		Password:    &password,
		FirstName:   f.FirstName(),
		LastName:    f.LastName(),
		IsActive:    &isActive,
		IsStaff:     &isStaff,
		IsSuperuser: &isSuperuser,
		DateJoined:  f.DateRange(now.AddDate(-5, 0, 0), now).UTC(),
	}
}

// Seed ensures the default superuser exists and, when fewer than target
// users are stored, creates another target fake users. Usernames that
// collide with existing accounts are skipped.
func (s *UserService) Seed(ctx context.Context, f *gofakeit.Faker, target int) (SeedResult, error) {
	var result SeedResult

	if _, err := s.repo.GetByUsername(ctx, SeedAdminUsername); errors.Is(err, store.ErrNotFound) {
		password := SeedPassword
		if _, err := s.CreateSuperuser(ctx, CreateUserInput{
			Username: SeedAdminUsername,
			Email:    SeedAdminEmail,
			Password: &password,
		}); err != nil {
			return result, fmt.Errorf("create admin: %w", err)
		}
		result.AdminCreated = true
	} else if err != nil {
		return result, fmt.Errorf("look up admin: %w", err)
	}

	count, err := s.repo.Count(ctx, store.UserFilter{})
	if err != nil {
		return result, fmt.Errorf("count users: %w", err)
	}
	if count >= target {
		return result, nil
	}

	for i := 0; i < target; i++ {
		in := FakeUserInput(f, SeedPassword)
		if _, err := s.CreateUser(ctx, in); err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				s.logger.Debug("skip seeded user", zap.String("username", in.Username), zap.Error(err))
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("create seeded user: %w", err)
		}
		result.Created++
	}
	return result, nil
}
