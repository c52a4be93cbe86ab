package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	apperrors "voiceclone/internal/errors"
	"voiceclone/internal/fishaudio"
	"voiceclone/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) DecrementCredits(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) IncrementCredits(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

// MockVoiceProvider is a mock implementation of VoiceProvider.
type MockVoiceProvider struct {
	mock.Mock
}

func (m *MockVoiceProvider) ListModels(ctx context.Context, tag string) ([]fishaudio.Model, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fishaudio.Model), args.Error(1)
}

func (m *MockVoiceProvider) CreateModel(ctx context.Context, in fishaudio.CreateModelRequest) (json.RawMessage, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockVoiceProvider) Synthesize(ctx context.Context, in fishaudio.SynthesisRequest) (*fishaudio.Speech, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fishaudio.Speech), args.Error(1)
}

// memoryUserRepository is a race-safe in-memory store whose decrement has the
// same conditional semantics as the SQL one.
type memoryUserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*model.User
}

func newMemoryUserRepository(users ...*model.User) *memoryUserRepository {
	r := &memoryUserRepository{users: map[string]*model.User{}}
	for _, u := range users {
		r.nextID++
		u.ID = r.nextID
		r.users[u.Username] = u
	}
	return r
}

func (r *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return apperrors.ErrUserAlreadyExists
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.users[user.Username] = &stored
	return nil
}

func (r *memoryUserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *user
	r.users[user.Username] = &stored
	return nil
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryUserRepository) DecrementCredits(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok || u.Credits <= 0 {
		return false, nil
	}
	u.Credits--
	return true, nil
}

func (r *memoryUserRepository) IncrementCredits(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Credits++
	return nil
}

func (r *memoryUserRepository) credits(username string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[username].Credits
}

// memoryCache is a ModelCache backed by a map.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, _ := json.Marshal(value)
	c.entries[key] = data
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
