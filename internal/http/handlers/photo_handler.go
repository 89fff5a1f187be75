// Photo HTTP handlers.
//
//   - POST /upload  (multipart image upload, field "img")
//   - GET  /photos  (feed with likeCount, commentCount and isLiked, ETag support)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/http/middleware"
	"github.com/tbourn/go-gallery-backend/internal/repo"
	"github.com/tbourn/go-gallery-backend/internal/services"
)

// UploadFormField is the multipart field carrying the image.
const UploadFormField = "img"

// UploadResponse acknowledges a stored photo.
type UploadResponse struct {
	Message  string `json:"message"  example:"Upload succeeded"`
	ImageURL string `json:"imageUrl" example:"1718000000000-1a2b3c4d.jpg"`
}

// UploadPhoto godoc
// @ID          uploadPhoto
// @Summary     Upload a photo
// @Description Stores an image for the caller. The stored name (local storage) or public URL (S3) is returned as imageUrl.
// @Tags        Photos
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       img  formData  file  true  "Image file"
// @Success     201  {object}  handlers.UploadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "No file or not an image"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing token"
// @Failure     403  {object}  handlers.ErrorResponse  "Invalid token"
// @Failure     413  {object}  handlers.ErrorResponse  "File too large"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /upload [post]
func (h *Handlers) UploadPhoto(c *gin.Context) {
	uid, authed := currentUser(c)
	if !authed {
		return
	}
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	fh, err := c.FormFile(UploadFormField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
				fmt.Sprintf("image exceeds %d bytes", tooBig.Limit))
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, "image not found")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, "image could not be read")
		return
	}
	defer f.Close()

	p, err := h.photoSvc.Upload(c.Request.Context(), uid, fh.Filename, f, fh.Size)
	switch {
	case errors.Is(err, services.ErrInvalidImage):
		fail(c, http.StatusBadRequest, ErrCodeInvalidImage, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, "could not store image")
		return
	}
	ok(c, http.StatusCreated, UploadResponse{Message: "Upload succeeded", ImageURL: p.ImageURL})
}

// feedETag renders a weak validator from the feed fingerprint.
func feedETag(viewerID uint, st repo.FeedStats) string {
	return fmt.Sprintf(`W/"photos:%d:%d:%d:%d:%d:%d:%d:%d"`,
		viewerID, st.Photos, unixNano(st.LatestPhoto),
		st.ActiveLikes, unixNano(st.LatestLike), st.ViewerLikes,
		st.Comments, unixNano(st.LatestComment))
}

func unixNano(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

// ListPhotos godoc
// @ID          listPhotos
// @Summary     Photo feed
// @Description Lists every photo newest first with its like count, comment count and whether the caller liked it.
// @Description Supports a weak ETag via If-None-Match and may return 304.
// @Tags        Photos
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"  example(W/\"photos:1:3:0:2:0:1:4:0\")
// @Success     200  {array}   domain.FeedItem
// @Header      200  {string}  ETag  "Weak ETag for the current feed"
// @Success     304  {string}  string  "Not Modified"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing token"
// @Failure     403  {object}  handlers.ErrorResponse  "Invalid token"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /photos [get]
func (h *Handlers) ListPhotos(c *gin.Context) {
	uid, authed := currentUser(c)
	if !authed {
		return
	}
	ctx := c.Request.Context()

	// ETag pre-check (best effort).
	if st, err := h.feedSvc.Fingerprint(ctx, uid); err == nil {
		etag := feedETag(uid, st)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	} else {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("feed fingerprint failed")
	}

	items, err := h.feedSvc.GetFeed(ctx, uid)
	if err != nil {
		c.Writer.Header().Del("ETag")
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list photos")
		return
	}
	if items == nil {
		items = []domain.FeedItem{}
	}
	ok(c, http.StatusOK, items)
}
