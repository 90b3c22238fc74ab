package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/dmitrijs2005/projectshelf/internal/common"
)

// ResetTokenBytes is the entropy of a reset token (64 hex characters).
const ResetTokenBytes = 32

// GenerateResetToken returns a random token for the user and the hash to store.
func GenerateResetToken() (token, hash string, err error) {
	token, err = common.MakeRandHexString(ResetTokenBytes)
	if err != nil {
		return "", "", err
	}
	return token, HashResetToken(token), nil
}

// HashResetToken is the sha256 of token, hex encoded.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
