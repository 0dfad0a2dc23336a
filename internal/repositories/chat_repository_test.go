package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChatIDOrderIndependent(t *testing.T) {
	require.Equal(t, ChatID("alice", "bob"), ChatID("bob", "alice"))
	require.Equal(t, "alice_bob", ChatID("bob", "alice"))
}

func TestChatIDSameUser(t *testing.T) {
	require.Equal(t, "u1_u1", ChatID("u1", "u1"))
}
