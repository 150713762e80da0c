package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(8)
	require.NoError(t, err)
	assert.Len(t, code, 16)

	other, err := GenerateCode(8)
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	now := SystemClock().Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test")

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Do(func() error { return nil }))
	}
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("broker down")

	for i := 0; i < 5; i++ {
		assert.Equal(t, boom, cb.Do(func() error { return boom }))
	}
	assert.Equal(t, BreakerOpen, cb.State())

	// Open breaker sheds the call without running it.
	called := false
	err := cb.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("broker down")

	for i := 0; i < 4; i++ {
		_ = cb.Do(func() error { return boom })
	}
	require.NoError(t, cb.Do(func() error { return nil }))

	// The streak is broken: four more failures still do not trip it.
	for i := 0; i < 4; i++ {
		_ = cb.Do(func() error { return boom })
	}
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.cooldown = 10 * time.Millisecond
	boom := errors.New("broker down")

	for i := 0; i < 5; i++ {
		_ = cb.Do(func() error { return boom })
	}
	require.Equal(t, BreakerOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, cb.State())

	// Successful probe closes it again.
	require.NoError(t, cb.Do(func() error { return nil }))
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker("test")
	cb.cooldown = 10 * time.Millisecond
	boom := errors.New("broker down")

	for i := 0; i < 5; i++ {
		_ = cb.Do(func() error { return boom })
	}

	time.Sleep(20 * time.Millisecond)
	_ = cb.Do(func() error { return boom })
	assert.Equal(t, BreakerOpen, cb.State())
}
