package prefhook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MockCache implements the Cache interface for testing
type MockCache struct {
	mu      sync.RWMutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	failSet bool
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.data[key]
	if !exists {
		return nil, ErrNotFound
	}
	return value, nil
}

func (m *MockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet {
		return ErrCacheUnavailable
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

func (m *MockCache) Close() error {
	return nil
}

// MockLogger records log messages for assertions
type MockLogger struct {
	mu       sync.Mutex
	Messages []string
}

func (l *MockLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, fmt.Sprintf("%s: %s %v", level, msg, args))
}

func (l *MockLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args...) }
func (l *MockLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *MockLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *MockLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }
func (l *MockLogger) SetLevel(LogLevel)             {}

func (l *MockLogger) Count(prefix string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, m := range l.Messages {
		if len(m) >= len(prefix) && m[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// errHook is a Hook that fails, panics or blocks on demand
type errHook struct {
	name  string
	err   error
	panic bool
	block bool
}

func (h *errHook) Name() string { return h.name }

func (h *errHook) UserPreferences(ctx context.Context) (Definitions, error) {
	if h.panic {
		panic("boom")
	}
	if h.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, errors.New("errHook configured without a failure")
}

// notificationsHook mirrors the documented example implementation.
func notificationsHook() Definitions {
	return Definitions{
		"enabled_notifications": {
			Title:        "Enabled notifications",
			Serialize:    true,
			DefaultValue: []any{"email"},
			FormIDs:      []string{"user_profile_form"},
			FormItem: &FormItem{
				Title:    "Enabled notifications",
				Type:     WidgetCheckboxes,
				Required: true,
				Options: []Choice{
					{Value: "email", Label: "Email"},
					{Value: "sms", Label: "SMS"},
					{Value: "twitter", Label: "Twitter"},
				},
				Weight: 1,
				Access: "alter own comstack_notification settings",
			},
		},
	}
}

func newTestRegistry(opts ...Option) (*Registry, *MockLogger) {
	logger := &MockLogger{}
	return New(append([]Option{WithLogger(logger)}, opts...)...), logger
}
