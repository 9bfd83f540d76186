package audiotest

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

// WaitTimeout bounds how long helpers wait on background goroutines.
const WaitTimeout = 2 * time.Second

// WaitForTimers blocks until clock has at least n pending timers, which for
// a rotation loop means it went back to sleep.
func WaitForTimers(t require.TestingT, clock *clockwork.FakeClock, n int) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	ctx, cancel := context.WithTimeout(context.Background(), WaitTimeout)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, n), "waiting for %d timer(s)", n)
}
