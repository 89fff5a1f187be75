// Like HTTP handler.
//
//   - POST /like  (toggle the caller's like on a photo)
//
// The route is normally wrapped by middleware.Idempotency so a retried
// request carrying the same Idempotency-Key replays this handler's response
// instead of toggling twice.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gallery-backend/internal/services"
	"github.com/tbourn/go-gallery-backend/internal/utils"
)

// LikeRequest is the JSON payload for a toggle. PhotoID accepts a number or a
// numeric string.
type LikeRequest struct {
	PhotoID utils.FlexID `json:"photoId" swaggertype:"integer" example:"42"`
}

// LikeResponse reports the outcome of a toggle.
type LikeResponse struct {
	Message string `json:"message" example:"Like succeeded"`
	Success bool   `json:"success" example:"true"`
	// Liked is the pair's state after the toggle.
	Liked bool `json:"liked" example:"true"`
}

// ToggleLike godoc
// @ID          toggleLike
// @Summary     Like or unlike a photo
// @Description Flips the caller's like on a photo. Returns 201 when this call created the first-ever like for the pair, 200 otherwise.
// @Description A retry with the same Idempotency-Key replays the original response.
// @Tags        Likes
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string                 false  "Deduplicates retries"  example(like-42-7f1c)
// @Param       body             body    handlers.LikeRequest   true   "Photo to toggle"
// @Success     200  {object}  handlers.LikeResponse  "Toggled an existing like"
// @Success     201  {object}  handlers.LikeResponse  "First like for this pair"
// @Failure     400  {object}  handlers.ErrorResponse "photoId missing"
// @Failure     401  {object}  handlers.ErrorResponse "Missing token"
// @Failure     403  {object}  handlers.ErrorResponse "Invalid token"
// @Failure     404  {object}  handlers.ErrorResponse "Photo not found"
// @Failure     503  {object}  handlers.ErrorResponse "Pair busy, retry"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /like [post]
func (h *Handlers) ToggleLike(c *gin.Context) {
	uid, authed := currentUser(c)
	if !authed {
		return
	}

	var req LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "photoId is required")
		return
	}

	res, err := h.likeSvc.Toggle(c.Request.Context(), uid, req.PhotoID.Uint())
	switch {
	case errors.Is(err, services.ErrPhotoIDRequired):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrPhotoNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	case errors.Is(err, services.ErrLockTimeout):
		c.Header("Retry-After", "1")
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "like is being updated, retry")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeToggleFailed, "could not toggle like")
		return
	}

	resp := LikeResponse{Message: "Unlike succeeded", Success: true, Liked: res.Liked()}
	if res.Liked() {
		resp.Message = "Like succeeded"
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	ok(c, status, resp)
}
