package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strconv"
)

// GenOTPCode generates a 6-digit one-time code drawn uniformly from
// [100000, 999999] using a cryptographically strong source.
func GenOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// GenResetToken generates a url-safe random token of n bytes of entropy.
func GenResetToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashResetToken returns the hex sha256 digest of a reset token. Only the
// digest is ever stored; the raw token travels in the emailed link.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
