package rooms

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

const codeLength = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a random zero-padded 6-digit room code.
// Uniqueness is the caller's problem; see Coordinator.insertRoom.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n.Int64()), nil
}

// NormalizeCode canonicalizes client-supplied room codes. Parsing through an
// integer keeps "000042" and "42" from addressing different rooms.
func NormalizeCode(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidRoomCode
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 999999 {
		return "", ErrInvalidRoomCode
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}
