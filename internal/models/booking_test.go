package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBookingExpiryBoundary(t *testing.T) {
	now := time.Now()
	b := SlotBooking{ExpiresAt: now}

	require.True(t, b.IsExpired(now), "a booking expiring exactly now no longer holds the slot")
	require.True(t, b.IsExpired(now.Add(time.Nanosecond)))
	require.False(t, b.IsExpired(now.Add(-time.Nanosecond)))
}

func TestBookingTTL(t *testing.T) {
	require.Equal(t, 72*time.Hour, BookingTTL)
}

func TestDecisionHelpers(t *testing.T) {
	require.True(t, Allow().Allowed)
	require.Empty(t, Allow().Reason)

	d := Deny(ReasonSlotsFull)
	require.False(t, d.Allowed)
	require.Equal(t, ReasonSlotsFull, d.Reason)
}
