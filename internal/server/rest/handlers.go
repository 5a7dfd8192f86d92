package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/server/services"
	"github.com/gin-gonic/gin"
)

// writeError maps the sentinel error taxonomy onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrorValidation):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		status = http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		status = http.StatusNotFound
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: err.Error()})
}

func (s *RestServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *RestServer) postJoin(c *gin.Context) {
	account, err := s.accounts.SignUp(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponse(account))
}

func (s *RestServer) postPhoto(c *gin.Context) {
	var req PhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrorValidation)
		return
	}

	photo, err := s.photos.Create(c.Request.Context(), services.PhotoInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Base64Photo,
		ContentType: req.MimeType,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, photoResponse(services.PhotoView{Photo: photo, IsMine: true}))
}

func (s *RestServer) getPhoto(c *gin.Context) {
	view, err := s.photos.Read(c.Request.Context(), c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, photoResponse(*view))
}

func (s *RestServer) putPhoto(c *gin.Context) {
	var req PhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrorValidation)
		return
	}

	photo, err := s.photos.Replace(c.Request.Context(), c.Param("key"), services.PhotoInput{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Base64Photo,
		ContentType: req.MimeType,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, photoResponse(services.PhotoView{Photo: photo, IsMine: true}))
}

func (s *RestServer) patchPhoto(c *gin.Context) {
	var req PhotoPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrorValidation)
		return
	}

	photo, err := s.photos.Patch(c.Request.Context(), c.Param("key"), services.PhotoPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, photoResponse(services.PhotoView{Photo: photo, IsMine: true}))
}

func (s *RestServer) deletePhoto(c *gin.Context) {
	if err := s.photos.Delete(c.Request.Context(), c.Param("key")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *RestServer) listPhotos(c *gin.Context) {
	q := services.ListQuery{
		OwnerID:   c.DefaultQuery("ownerGoogleplusUserId", services.OwnerMe),
		PageToken: c.Query("pageToken"),
	}

	if v := c.Query("lastUpdated"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(c, common.ErrorValidation)
			return
		}
		q.UpdatedAfter = &ts
	}

	if v, ok := c.GetQuery("title"); ok {
		q.Title = &v
	}

	if v := c.Query("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				q.Tags = append(q.Tags, tag)
			}
		}
	}

	if v := c.Query("limit"); v != "" {
		limit, err := parsePositiveInt(v)
		if err != nil {
			writeError(c, common.ErrorValidation)
			return
		}
		q.Limit = limit
	}

	result, err := s.photos.List(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := PhotoListResponse{Items: make([]PhotoResponse, 0, len(result.Photos)), NextPageToken: result.NextPageToken}
	for _, view := range result.Photos {
		resp.Items = append(resp.Items, photoResponse(view))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *RestServer) postACL(c *gin.Context) {
	var req ACLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, common.ErrorValidation)
		return
	}

	photo, err := s.photos.AddACL(c.Request.Context(), c.Param("key"), req.ACLUserIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ACLResponse{Key: photo.Key(), ACL: photo.ACL})
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, common.ErrorValidation
	}
	return n, nil
}
