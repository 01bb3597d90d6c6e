package pkg

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// GenerateRoomCode - generates a short human-typeable room code.
func GenerateRoomCode() string {
	code := make([]byte, roomCodeLength)

	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			return uuid.NewString()[:roomCodeLength]
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}

	return string(code)
}

// GenerateNewSessionID - generates a new unique session id for a connection.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
