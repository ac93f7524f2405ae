package board_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tgienger/kb/internal/board"
)

// memStorage is an in-memory board.Storage
type memStorage struct {
	items   map[string]string
	writes  int
	failSet bool
}

func newMemStorage() *memStorage {
	return &memStorage{items: make(map[string]string)}
}

func (m *memStorage) GetItem(key string) (string, bool, error) {
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memStorage) SetItems(items map[string]string) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.writes++
	for k, v := range items {
		m.items[k] = v
	}
	return nil
}

// testClock advances one minute per call
type testClock struct {
	t time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func openRegistry(t *testing.T, store board.Storage) (*board.Registry, *testClock) {
	t.Helper()

	clock := newTestClock()
	r, err := board.Open(store, board.WithClock(clock.Now), board.WithIDs(sequentialIDs()))
	require.NoError(t, err)
	return r, clock
}
