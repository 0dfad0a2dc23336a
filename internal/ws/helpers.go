package ws

import (
	"crypto/rand"
	"encoding/hex"
)

// newConnID tags a socket for the hub's connection registry. An empty
// ID is tolerated, the hub keys rooms by user, not by connection.
func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
