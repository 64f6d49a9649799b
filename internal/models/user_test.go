package models

import (
	"fmt"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	t.Parallel()

	id, err := ParseUserID(" 175928847299117063 ")
	require.NoError(t, err)
	require.Equal(t, snowflake.ID(175928847299117063), id)

	for _, raw := range []string{"", "   ", "abc", "0", "-5"} {
		_, err := ParseUserID(raw)
		require.ErrorIs(t, err, ErrInvalidUserID, "raw=%q", raw)
	}
}

func TestNewUser(t *testing.T) {
	t.Parallel()

	u, err := NewUser(UserPayload{
		ID:         "175928847299117063",
		Username:   "alice",
		GlobalName: null.StringFrom("Alice"),
		Avatar:     null.StringFrom("a_hash"),
	})
	require.NoError(t, err)
	require.Equal(t, snowflake.ID(175928847299117063), u.ID)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "Alice", u.DisplayName())
	require.True(t, u.Avatar.Valid)

	_, err = NewUser(UserPayload{Username: "no-id"})
	require.ErrorIs(t, err, ErrInvalidUserID)
}

// Время создания вычисляется из snowflake (пример из документации платформы).
func TestUser_CreatedTimestamp(t *testing.T) {
	t.Parallel()

	u := &User{ID: snowflake.ID(175928847299117063)}
	require.EqualValues(t, 1462015105796, u.CreatedTimestamp())
	require.Equal(t, int64(1462015105796), u.CreatedAt().UnixMilli())
}

func TestUser_MentionAndString(t *testing.T) {
	t.Parallel()

	u := &User{ID: snowflake.ID(123), Username: "bob"}
	require.Equal(t, "<@123>", u.Mention())
	require.Equal(t, "<@123>", u.String())
	require.Equal(t, "hi <@123>!", fmt.Sprintf("hi %s!", u))
}

func TestUser_DisplayName_FallsBackToUsername(t *testing.T) {
	t.Parallel()

	u := &User{ID: 1, Username: "bob"}
	require.Equal(t, "bob", u.DisplayName())

	u.GlobalName = null.StringFrom("")
	require.Equal(t, "bob", u.DisplayName())
}

func TestPremiumType(t *testing.T) {
	t.Parallel()

	require.Equal(t, "none", PremiumNone.String())
	require.Equal(t, "classic", PremiumClassic.String())
	require.Equal(t, "full", PremiumFull.String())
	require.Equal(t, "basic", PremiumBasic.String())
	require.Equal(t, "unknown", PremiumType(9).String())

	require.True(t, PremiumBasic.Valid())
	require.False(t, PremiumType(4).Valid())
	require.False(t, PremiumType(-1).Valid())
}
