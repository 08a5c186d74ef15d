package credentials

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	// InviteCodeLength is the number of characters in a family group invite code
	InviteCodeLength = 6

	inviteCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateInviteCode generates a random invite code of uppercase letters and digits
func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeChars[num.Int64()]
	}

	return string(code), nil
}

// NormalizeInviteCode trims whitespace and upper-cases a user supplied code
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
