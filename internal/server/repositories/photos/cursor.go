package photos

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor marks the last row of a returned page. Pagination is keyset-based
// over (updated_at, id), matching the list ordering, so a cursor stays
// valid when earlier rows change.
type Cursor struct {
	Updated time.Time `json:"u"`
	ID      int64     `json:"id"`
}

// Encode renders the cursor as an opaque, URL-safe page token.
func (c Cursor) Encode() string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor parses a page token produced by Encode.
func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	c := &Cursor{}
	if err := json.Unmarshal(b, c); err != nil {
		return nil, err
	}
	return c, nil
}
