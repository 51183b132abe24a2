package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealNameFallsBackToUsername(t *testing.T) {
	require.Equal(t, "Pat Doe", User{Username: "pd", FirstName: "Pat", LastName: "Doe"}.RealName())
	require.Equal(t, "Pat", User{Username: "pd", FirstName: "Pat"}.RealName())
	require.Equal(t, "pd", User{Username: "pd"}.RealName())
}

func TestDisplayNamePerVisibility(t *testing.T) {
	u := User{Username: "pd", FirstName: "Pat", LastName: "Doe"}

	cases := []struct {
		visibility string
		want       string
	}{
		{VisibilityFull, "Pat Doe"},
		{VisibilityFirstOnly, "Pat"},
		{VisibilityInitials, "PD"},
		{VisibilityAnonymous, AnonymousName},
		{"", AnonymousName},
	}
	for _, tc := range cases {
		t.Run(tc.visibility, func(t *testing.T) {
			p := Profile{NameVisibility: tc.visibility}
			require.Equal(t, tc.want, p.DisplayName(u))
		})
	}
}

func TestDisplayNameInitialsMultiByte(t *testing.T) {
	p := Profile{NameVisibility: VisibilityInitials}

	require.Equal(t, "ÅÖ", p.DisplayName(User{Username: "ao", FirstName: "Åsa", LastName: "Öberg"}))
	require.Equal(t, "ж", p.DisplayName(User{Username: "жанна"}))
	require.Equal(t, AnonymousName, p.DisplayName(User{}))
}

func TestVisibleNameRevelationOverrides(t *testing.T) {
	u := User{Username: "pd", FirstName: "Pat", LastName: "Doe"}
	p := Profile{NameVisibility: VisibilityAnonymous}

	require.Equal(t, AnonymousName, VisibleName(u, p, false))
	require.Equal(t, "Pat Doe", VisibleName(u, p, true))
}

func TestReceiverLimit(t *testing.T) {
	cat := MessageCategory{OwnerID: 2, SlotLimit: 5, IsActive: true}

	require.Equal(t, 5, cat.ReceiverLimit(2))
	require.Equal(t, 0, cat.ReceiverLimit(3), "categories grant no capacity to non-owners")

	cat.IsActive = false
	require.Equal(t, 0, cat.ReceiverLimit(2), "inactive categories grant no capacity")
}
