package auth

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IDTokenShaped reports whether raw has the three-segment form of a
// self-contained ID token. Shape says nothing about validity: the
// transport middleware still sends shaped tokens to the provider for
// signature verification before any claim in them is trusted.
func IDTokenShaped(raw string) bool {
	return strings.Count(raw, ".") == 2
}

// SubjectFromIDToken extracts the provider subject ID (the "sub" claim)
// from a self-contained ID token. Only the payload segment is decoded;
// the token's signature was already verified by the transport middleware
// before a caller carrying it was placed in the context.
//
// Any malformation, wrong segment count, bad base64url, bad JSON, missing
// claim, yields ("", false) rather than an error. Callers treat an absent
// subject as "try the next resolution strategy", so failing open to absent
// is deliberate.
func SubjectFromIDToken(raw string) (string, bool) {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return "", false
	}

	body, err := jwt.NewParser().DecodeSegment(segments[1])
	if err != nil {
		return "", false
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(body, &claims); err != nil {
		return "", false
	}
	if claims.Sub == "" {
		return "", false
	}
	return claims.Sub, true
}
