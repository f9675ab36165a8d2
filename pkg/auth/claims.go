package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenClaims identifies the caller by ledger account. Every privileged
// check compares Account against the stored owner or verifier.
type AccessTokenClaims struct {
	Account string `json:"account"`
	jwt.RegisteredClaims
}
