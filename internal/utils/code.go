package utils

import (
	"strings"

	"github.com/google/uuid"
)

const roomSuffixLen = 6

// RoomName builds a meeting room identifier from a course code plus a short
// random hex suffix. The suffix keeps the name guessable-unique; the room
// table's unique index is the actual guarantee.
func RoomName(courseCode string) string {
	hexStr := strings.ReplaceAll(uuid.NewString(), "-", "")
	return courseCode + hexStr[:roomSuffixLen]
}
