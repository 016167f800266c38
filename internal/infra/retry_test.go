package infra

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetryTransient_RetriesNetworkErrors(t *testing.T) {
	calls := 0
	err := retryTransient(context.Background(), 3, func(context.Context) error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryTransient_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := retryTransient(context.Background(), 3, func(context.Context) error {
		calls++
		return errors.New("NOAUTH Authentication required")
	})
	require.ErrorContains(t, err, "NOAUTH")
	require.Equal(t, 1, calls)
}

func TestRetryTransient_GivesUp(t *testing.T) {
	calls := 0
	err := retryTransient(context.Background(), 2, func(context.Context) error {
		calls++
		return context.DeadlineExceeded
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 2, calls)
}

func TestRetryTransient_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retryTransient(ctx, 3, func(ctx context.Context) error { return ctx.Err() })
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRedis_EmptyAddrDisabled(t *testing.T) {
	rdb, err := NewRedis(context.Background(), "", "")
	require.NoError(t, err)
	require.Nil(t, rdb)
}
