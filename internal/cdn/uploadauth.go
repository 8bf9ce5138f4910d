// Package cdn covers the two contracts with the external media CDN:
// short-lived signed upload parameters, and translating a stored
// transformation config into the CDN's URL parameter syntax.
package cdn

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// UploadAuth is the parameter set a browser needs to upload directly to the
// CDN. The signature is HMAC-SHA1 of token+expire under the private key,
// which is the CDN's client-upload contract.
type UploadAuth struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

// NewUploadAuth mints a one-time upload token valid for ttl.
func NewUploadAuth(publicKey, privateKey string, ttl time.Duration) UploadAuth {
	token := uuid.New().String()
	expire := time.Now().Add(ttl).Unix()
	return UploadAuth{
		Token:     token,
		Expire:    expire,
		Signature: Sign(privateKey, token, expire),
		PublicKey: publicKey,
	}
}

// Sign computes the upload signature for a token/expire pair.
func Sign(privateKey, token string, expire int64) string {
	mac := hmac.New(sha1.New, []byte(privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
