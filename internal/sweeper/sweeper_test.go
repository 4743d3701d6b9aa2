package sweeper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	removed int
	calls   int
}

func (f *fakeStore) DeleteExpired(now time.Time) int {
	f.calls++
	return f.removed
}

func TestSweepVisitsEveryStore(t *testing.T) {
	sessions := &fakeStore{removed: 3}
	pending := &fakeStore{removed: 0}

	s := New(time.Minute)
	s.Register("sessions", sessions)
	s.Register("pending_logins", pending)

	s.sweep(time.Now())

	require.Equal(t, 1, sessions.calls)
	require.Equal(t, 1, pending.calls)
}
