package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/userapi/internal/cache"
	"github.com/jjudge-oj/userapi/internal/store"
	"github.com/jjudge-oj/userapi/types"
	"go.uber.org/zap"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	List(ctx context.Context, filter store.UserFilter) ([]types.User, error)
	Count(ctx context.Context, filter store.UserFilter) (int, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	TouchLastLogin(ctx context.Context, id int, at time.Time) error
	Delete(ctx context.Context, id int) error
}

// UserCache is an optional read-through cache for single-user lookups.
// Delete bumps the user's generation; Set must refuse to store a user whose
// generation moved since the caller read it.
type UserCache interface {
	Get(ctx context.Context, id int) (types.User, error)
	Generation(ctx context.Context, id int) (int64, error)
	Set(ctx context.Context, user types.User, generation int64) error
	Delete(ctx context.Context, id int) error
}

// EventPublisher announces user lifecycle changes.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, event types.UserEvent) error
}

// OperationRecorder counts service outcomes, e.g. for metrics.
type OperationRecorder interface {
	RecordUserOperation(operation, outcome string)
}

// ErrInvalidCredentials is returned by Authenticate for any login failure.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CreateUserInput carries the writable fields of a new account. Nil flags
// take the account type's defaults; a nil password stores an unusable marker.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    *string
	FirstName   string
	LastName    string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool

	// DateJoined backdates seeded accounts; zero means now.
	DateJoined time.Time
}

// UserPatch lists the fields an update may change. Nil fields are left as-is.
type UserPatch struct {
	FirstName   *string
	LastName    *string
	Email       *string
	IsActive    *bool
	IsStaff     *bool
	IsSuperuser *bool
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo    UserRepository
	hasher  *PasswordHasher
	cache   UserCache
	events  EventPublisher
	metrics OperationRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures a UserService.
type Option func(*UserService)

func WithPasswordHasher(h *PasswordHasher) Option {
	return func(s *UserService) { s.hasher = h }
}

func WithCache(c UserCache) Option {
	return func(s *UserService) { s.cache = c }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *UserService) { s.events = p }
}

func WithOperationRecorder(r OperationRecorder) Option {
	return func(s *UserService) { s.metrics = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *UserService) { s.logger = l }
}

func NewUserService(repo UserRepository, opts ...Option) *UserService {
	s := &UserService{
		repo:   repo,
		hasher: NewPasswordHasher(0),
		logger: zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetByID returns a user, consulting the cache first when one is configured.
func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}
	if user, err := s.cache.Get(ctx, id); err == nil {
		return user, nil
	}

	// The generation is read before the row so a write that lands in between
	// makes the fill below a no-op.
	generation, genErr := s.cache.Generation(ctx, id)

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if genErr != nil {
		s.logger.Warn("read cache generation failed", zap.Int("user_id", id), zap.Error(genErr))
		return user, nil
	}
	if err := s.cache.Set(ctx, user, generation); err != nil && !errors.Is(err, cache.ErrStale) {
		s.logger.Warn("cache user failed", zap.Int("user_id", id), zap.Error(err))
	}
	return user, nil
}

// List returns the users matching filter, honoring its limit and offset.
func (s *UserService) List(ctx context.Context, filter store.UserFilter) ([]types.User, error) {
	return s.repo.List(ctx, filter)
}

// Count returns the number of users matching filter, ignoring paging.
func (s *UserService) Count(ctx context.Context, filter store.UserFilter) (int, error) {
	return s.repo.Count(ctx, filter)
}

// CreateUser creates a regular account. is_staff and is_superuser default to false.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (types.User, error) {
	in.IsStaff = defaultBool(in.IsStaff, false)
	in.IsSuperuser = defaultBool(in.IsSuperuser, false)
	user, err := s.create(ctx, in)
	s.record("create", err)
	return user, err
}

// CreateSuperuser creates an account with both elevation flags set. Passing
// either flag explicitly as false is rejected.
func (s *UserService) CreateSuperuser(ctx context.Context, in CreateUserInput) (types.User, error) {
	in.IsStaff = defaultBool(in.IsStaff, true)
	in.IsSuperuser = defaultBool(in.IsSuperuser, true)

	errs := &ValidationError{}
	if !*in.IsStaff {
		errs.Add("is_staff", "Superuser must have is_staff=True.")
	}
	if !*in.IsSuperuser {
		errs.Add("is_superuser", "Superuser must have is_superuser=True.")
	}
	if err := errs.Err(); err != nil {
		s.record("create_superuser", err)
		return types.User{}, err
	}

	user, err := s.create(ctx, in)
	s.record("create_superuser", err)
	return user, err
}

func (s *UserService) create(ctx context.Context, in CreateUserInput) (types.User, error) {
	user := types.User{
		Username:    NormalizeUsername(strings.TrimSpace(in.Username)),
		Email:       NormalizeEmail(in.Email),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		IsActive:    *defaultBool(in.IsActive, true),
		IsStaff:     *in.IsStaff,
		IsSuperuser: *in.IsSuperuser,
		DateJoined:  in.DateJoined,
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = s.now()
	}

	errs := &ValidationError{}
	validateUsername(errs, user.Username)
	validateName(errs, "first_name", user.FirstName)
	validateName(errs, "last_name", user.LastName)
	validateEmail(errs, user.Email)
	if in.Password != nil && len(*in.Password) > maxPasswordBytes {
		errs.Add("password", MsgPasswordTooBig)
	}
	if err := errs.Err(); err != nil {
		return types.User{}, err
	}

	if _, err := s.repo.GetByUsername(ctx, user.Username); err == nil {
		return types.User{}, NewValidationError("username", MsgUsernameTaken)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check username: %w", err)
	}

	if in.Password != nil {
		hashed, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return types.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashed
	} else {
		user.PasswordHash = s.hasher.Unusable()
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		// The pre-check above races with concurrent creates; the unique index decides.
		if errors.Is(err, store.ErrUsernameTaken) {
			return types.User{}, NewValidationError("username", MsgUsernameTaken)
		}
		return types.User{}, err
	}

	s.publish(ctx, types.UserCreated, created.ID, &created)
	return created, nil
}

// UpdateUser applies every non-nil field of patch and persists the record in
// a single write.
func (s *UserService) UpdateUser(ctx context.Context, id int, patch UserPatch) (types.User, error) {
	user, err := s.update(ctx, id, patch)
	s.record("update", err)
	return user, err
}

func (s *UserService) update(ctx context.Context, id int, patch UserPatch) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if patch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		user.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Email != nil {
		user.Email = NormalizeEmail(*patch.Email)
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsStaff != nil {
		user.IsStaff = *patch.IsStaff
	}
	if patch.IsSuperuser != nil {
		user.IsSuperuser = *patch.IsSuperuser
	}

	errs := &ValidationError{}
	validateName(errs, "first_name", user.FirstName)
	validateName(errs, "last_name", user.LastName)
	validateEmail(errs, user.Email)
	if err := errs.Err(); err != nil {
		return types.User{}, err
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return types.User{}, NewValidationError("username", MsgUsernameTaken)
		}
		return types.User{}, err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, types.UserUpdated, updated.ID, &updated)
	return updated, nil
}

// DeleteUser removes the account permanently.
func (s *UserService) DeleteUser(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	s.record("delete", err)
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.publish(ctx, types.UserDeleted, id, nil)
	return nil
}

// Authenticate checks a username/password pair against active accounts and
// records the login time.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, NormalizeUsername(strings.TrimSpace(username)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record("login", ErrInvalidCredentials)
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if !user.IsActive || !s.hasher.Verify(user.PasswordHash, password) {
		s.record("login", ErrInvalidCredentials)
		return types.User{}, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return types.User{}, fmt.Errorf("record last login: %w", err)
	}
	user.LastLogin = &now
	s.record("login", nil)
	return user, nil
}

func (s *UserService) invalidate(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("invalidate cached user failed", zap.Int("user_id", id), zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, eventType types.UserEventType, userID int, user *types.User) {
	if s.events == nil {
		return
	}
	event := types.UserEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		User:       user,
		OccurredAt: s.now(),
	}
	if err := s.events.PublishUserEvent(ctx, event); err != nil {
		s.logger.Error("publish user event failed",
			zap.String("event_type", string(eventType)),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
	}
}

func (s *UserService) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	var verr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		outcome = "invalid"
	case errors.Is(err, store.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrInvalidCredentials):
		outcome = "denied"
	default:
		outcome = "error"
	}
	s.metrics.RecordUserOperation(operation, outcome)
}

func defaultBool(v *bool, def bool) *bool {
	if v != nil {
		return v
	}
	return &def
}
