package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const inviteAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// InviteCodeLength 邀请码固定 6 位
const InviteCodeLength = 6

// GenerateVerificationCode returns a 4-digit code in [1000, 9999].
func GenerateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%d", n.Int64()+1000)
}

// GenerateInviteCode returns a 6-character code drawn from letters and digits.
// Uniqueness is not guaranteed here; the users table enforces it.
func GenerateInviteCode() string {
	b := make([]byte, InviteCodeLength)
	max := big.NewInt(int64(len(inviteAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		b[i] = inviteAlphabet[n.Int64()]
	}
	return string(b)
}
