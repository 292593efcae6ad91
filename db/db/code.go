package db

import "math/rand"

const (
	joinCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// JoinCodeLen is the length of a flat's join code.
	JoinCodeLen = 6
)

// NewJoinCode generates a random flat join code. Uniqueness is enforced by
// the store; callers retry on collision.
func NewJoinCode() string {
	code := make([]byte, JoinCodeLen)
	for i := range code {
		code[i] = joinCodeChars[rand.Intn(len(joinCodeChars))]
	}
	return string(code)
}
