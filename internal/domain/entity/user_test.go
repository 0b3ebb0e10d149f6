package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_DefaultState(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(10), u.ChatID)
	require.Nil(t, u.Location)
	require.Equal(t, Location{}, u.LocationOrEmpty())
}

func TestUser_SetLocation(t *testing.T) {
	u := NewUser(1, 10)
	u.SetLocation(55.751244, 37.618423)
	require.Equal(t, Location{Latitude: "55.751244", Longitude: "37.618423"}, u.LocationOrEmpty())
}
