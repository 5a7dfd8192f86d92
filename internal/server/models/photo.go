package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// tagRegex matches a whitespace-delimited description token that forms a
// hashtag: '#' followed by letters, digits or underscores, nothing else.
var tagRegex = regexp.MustCompile(`^#([A-Za-z0-9_]+)$`)

// validTag matches the tag value itself, without the '#'.
var validTag = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidTag reports whether s could ever be produced by tag extraction.
func ValidTag(s string) bool {
	return validTag.MatchString(s)
}

// Photo is one shared image with its metadata. Content holds the base64
// data-url payload as an opaque blob; tags are always derived from the
// description and never stored.
type Photo struct {
	ID          int64
	Title       string
	Description string
	Content     []byte
	ContentType string
	Owner       Identity
	ACL         []string
	Updated     time.Time

	// FromStore reports whether the struct was loaded from the database.
	// Ownership checks never run against unpersisted data.
	FromStore bool
}

// Key returns the external string form of the photo ID. Int64 IDs exceed
// the safe-integer range of JavaScript clients, hence strings on the wire.
func (p *Photo) Key() string {
	return strconv.FormatInt(p.ID, 10)
}

// ParseKey converts an external photo key back into the internal int64 ID.
func ParseKey(key string) (int64, error) {
	return strconv.ParseInt(key, 10, 64)
}

// Tags extracts hashtags from the description: every whitespace-delimited
// token matching tagRegex, in source order, without the leading '#'.
func (p *Photo) Tags() []string {
	tags := []string{}
	for _, phrase := range strings.Fields(p.Description) {
		if m := tagRegex.FindStringSubmatch(phrase); m != nil {
			tags = append(tags, m[1])
		}
	}
	return tags
}

// InACL reports whether the subject ID has been granted read access.
func (p *Photo) InACL(subjectID string) bool {
	for _, id := range p.ACL {
		if id == subjectID {
			return true
		}
	}
	return false
}
