package pkg

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

const (
	roomIDMinLen = 4
	roomIDMaxLen = 7
)

// GenerateRoomID - generates a short human-readable room identifier, a
// lowercase English noun. Uniqueness against live rooms is the caller's job.
func GenerateRoomID() string {
	for {
		noun := strings.ToLower(gofakeit.Noun())
		if len(noun) >= roomIDMinLen && len(noun) <= roomIDMaxLen {
			return noun
		}
	}
}

// GenerateConnectionID - generates an opaque identifier for one client session.
func GenerateConnectionID() string {
	return uuid.NewString()
}
