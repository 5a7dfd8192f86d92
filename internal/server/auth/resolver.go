package auth

import "context"

// Resolver determines the identity provider subject ID of the current
// caller. It never performs network I/O of its own: the ID-token path
// decodes the token locally, and the bearer path reads the introspection
// response the transport middleware already obtained for this request.
type Resolver struct{}

// SubjectID returns the caller's subject ID, or ok=false when there is no
// authenticated caller or no strategy can produce a subject. It never
// returns an error; absence is the failure mode.
func (Resolver) SubjectID(ctx context.Context) (string, bool) {
	caller, ok := CallerFromContext(ctx)
	if !ok || caller.Token == "" {
		return "", false
	}

	if sub, ok := SubjectFromIDToken(caller.Token); ok {
		return sub, true
	}

	cache, ok := TokenInfoCacheFromContext(ctx)
	if !ok {
		return "", false
	}
	info, ok := cache.Get(caller.Token)
	if !ok || !info.Valid() || info.UserID == "" {
		return "", false
	}
	return info.UserID, true
}
