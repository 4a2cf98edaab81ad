package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jjudge-oj/userapi/types"
)

// MemoryUserRepository keeps users in process memory. It mirrors the
// Postgres repository's semantics, including the unique username index, and
// backs local runs with DB_DRIVER=memory as well as tests.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int
	users  map[int]types.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID: 1,
		users:  make(map[int]types.User),
	}
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			return cloneUser(user), nil
		}
	}
	return types.User{}, ErrNotFound
}

func (r *MemoryUserRepository) List(_ context.Context, filter UserFilter) ([]types.User, error) {
	r.mu.RLock()
	matched := r.match(filter)
	r.mu.RUnlock()

	ordering := filter.Ordering
	if len(ordering) == 0 {
		ordering = DefaultOrdering
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return lessUser(matched[i], matched[j], ordering)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []types.User{}, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *MemoryUserRepository) Count(_ context.Context, filter UserFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.match(filter)), nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.usernameTaken(user.Username, 0) {
		return types.User{}, ErrUsernameTaken
	}
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now().UTC()
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = cloneUser(user)
	return user, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return types.User{}, ErrNotFound
	}
	if r.usernameTaken(user.Username, user.ID) {
		return types.User{}, ErrUsernameTaken
	}
	user.DateJoined = existing.DateJoined
	user.LastLogin = existing.LastLogin
	r.users[user.ID] = cloneUser(user)
	return user, nil
}

func (r *MemoryUserRepository) TouchLastLogin(_ context.Context, id int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	user.LastLogin = &at
	r.users[id] = user
	return nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// usernameTaken must be called with the lock held.
func (r *MemoryUserRepository) usernameTaken(username string, exceptID int) bool {
	for id, user := range r.users {
		if id != exceptID && user.Username == username {
			return true
		}
	}
	return false
}

// match must be called with the read lock held.
func (r *MemoryUserRepository) match(filter UserFilter) []types.User {
	users := make([]types.User, 0, len(r.users))
	for _, user := range r.users {
		if matchesFilter(user, filter) {
			users = append(users, cloneUser(user))
		}
	}
	return users
}

func matchesFilter(user types.User, filter UserFilter) bool {
	if filter.IsStaff != nil && user.IsStaff != *filter.IsStaff {
		return false
	}
	if filter.IsActive != nil && user.IsActive != *filter.IsActive {
		return false
	}
	if filter.IsSuperuser != nil && user.IsSuperuser != *filter.IsSuperuser {
		return false
	}
	if filter.DateJoinedFrom != nil && user.DateJoined.Before(*filter.DateJoinedFrom) {
		return false
	}
	if filter.DateJoinedTo != nil && user.DateJoined.After(*filter.DateJoinedTo) {
		return false
	}
	first := strings.ToLower(user.FirstName)
	last := strings.ToLower(user.LastName)
	for _, term := range filter.Search {
		term = strings.ToLower(term)
		if !strings.Contains(first, term) && !strings.Contains(last, term) {
			return false
		}
	}
	return true
}

func lessUser(a, b types.User, ordering []OrderTerm) bool {
	for _, term := range ordering {
		c := compareField(a, b, term.Field)
		if c == 0 {
			continue
		}
		if term.Desc {
			return c > 0
		}
		return c < 0
	}
	return a.ID < b.ID
}

func compareField(a, b types.User, field string) int {
	switch field {
	case "id":
		return compareInt(a.ID, b.ID)
	case "username":
		return strings.Compare(a.Username, b.Username)
	case "first_name":
		return strings.Compare(a.FirstName, b.FirstName)
	case "last_name":
		return strings.Compare(a.LastName, b.LastName)
	case "email":
		return strings.Compare(a.Email, b.Email)
	case "date_joined":
		return a.DateJoined.Compare(b.DateJoined)
	case "last_login":
		// NULL sorts after every timestamp, as in Postgres.
		switch {
		case a.LastLogin == nil && b.LastLogin == nil:
			return 0
		case a.LastLogin == nil:
			return 1
		case b.LastLogin == nil:
			return -1
		}
		return a.LastLogin.Compare(*b.LastLogin)
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cloneUser(user types.User) types.User {
	if user.LastLogin != nil {
		t := *user.LastLogin
		user.LastLogin = &t
	}
	return user
}
