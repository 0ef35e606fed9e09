package invoice

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// DigestHex returns the SHA-256 digest of data in lowercase hex. Job records
// store this form as the invoice hash.
func DigestHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestBase64 returns the SHA-256 digest of data in standard base64. The
// gateway payload reference carries this form.
func DigestBase64(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}
