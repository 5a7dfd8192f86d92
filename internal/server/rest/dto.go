package rest

import (
	"time"

	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/dmitrijs2005/picshare/internal/server/services"
)

// PhotoRequest is the create/replace payload. Base64Photo travels as a
// base64 string on the wire; encoding/json does the decoding.
type PhotoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Base64Photo []byte `json:"base64Photo"`
	MimeType    string `json:"mimeType"`
}

// PhotoPatchRequest carries only the fields a partial update may change;
// absent fields stay untouched.
type PhotoPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type PhotoResponse struct {
	Key         string    `json:"key"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Base64Photo []byte    `json:"base64Photo,omitempty"`
	MimeType    string    `json:"mimeType"`
	Updated     time.Time `json:"updated"`
	Tags        []string  `json:"tags"`
	IsMine      bool      `json:"isMine"`
}

type PhotoListResponse struct {
	Items         []PhotoResponse `json:"items"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

type ACLRequest struct {
	ACLUserIDs []string `json:"aclUserIds"`
}

// ACLResponse is deliberately narrow: granting access must not leak the
// photo contents back to the caller.
type ACLResponse struct {
	Key string   `json:"key"`
	ACL []string `json:"acl"`
}

type AccountResponse struct {
	GoogleplusUserID string   `json:"googleplusUserId"`
	Email            string   `json:"email"`
	ACLMembership    []string `json:"aclMembership,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func photoResponse(view services.PhotoView) PhotoResponse {
	p := view.Photo
	return PhotoResponse{
		Key:         p.Key(),
		Title:       p.Title,
		Description: p.Description,
		Base64Photo: p.Content,
		MimeType:    p.ContentType,
		Updated:     p.Updated,
		Tags:        p.Tags(),
		IsMine:      view.IsMine,
	}
}

func accountResponse(a *models.Account) AccountResponse {
	resp := AccountResponse{GoogleplusUserID: a.SubjectID, ACLMembership: a.ACLMembership}
	if a.Identity != nil {
		resp.Email = a.Identity.Email
	}
	return resp
}
