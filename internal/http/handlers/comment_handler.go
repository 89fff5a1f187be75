// Comment HTTP handlers.
//
//   - POST   /comments            (add a comment)
//   - GET    /comments/{photoId}  (list a photo's comments, newest first)
//   - DELETE /comments/{id}       (delete one's own comment)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gallery-backend/internal/domain"
	"github.com/tbourn/go-gallery-backend/internal/services"
	"github.com/tbourn/go-gallery-backend/internal/utils"
)

// CreateCommentRequest is the JSON payload for adding a comment.
type CreateCommentRequest struct {
	PhotoID utils.FlexID `json:"photoId" swaggertype:"integer" example:"42"`
	Comment string       `json:"comment" example:"Lovely light!"`
}

// DeleteCommentResponse acknowledges a deletion.
type DeleteCommentResponse struct {
	Message string `json:"message" example:"Comment deleted"`
	Success bool   `json:"success" example:"true"`
}

// CreateComment godoc
// @ID          createComment
// @Summary     Comment on a photo
// @Tags        Comments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.CreateCommentRequest  true  "Comment"
// @Success     201   {object}  handlers.MessageResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing comment or photoId"
// @Failure     401   {object}  handlers.ErrorResponse  "Missing token"
// @Failure     403   {object}  handlers.ErrorResponse  "Invalid token"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /comments [post]
func (h *Handlers) CreateComment(c *gin.Context) {
	uid, authed := currentUser(c)
	if !authed {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrEmptyComment.Error())
		return
	}

	_, err := h.commentSvc.Create(c.Request.Context(), uid, req.PhotoID.Uint(), req.Comment)
	switch {
	case errors.Is(err, services.ErrEmptyComment):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not add comment")
	default:
		message(c, http.StatusCreated, "Comment added")
	}
}

// ListComments godoc
// @ID          listComments
// @Summary     List a photo's comments
// @Description Returns the comments on a photo, newest first, each with its author's username.
// @Tags        Comments
// @Produce     json
// @Param       photoId  path      int  true  "Photo ID"  minimum(1)
// @Success     200      {array}   domain.CommentWithAuthor
// @Failure     400      {object}  handlers.ErrorResponse  "Bad photo id"
// @Failure     500      {object}  handlers.ErrorResponse  "Internal error"
// @Router      /comments/{photoId} [get]
func (h *Handlers) ListComments(c *gin.Context) {
	photoID, valid := utils.ParseID(c.Param("photoId"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "photoId must be a positive integer")
		return
	}

	items, err := h.commentSvc.List(c.Request.Context(), photoID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list comments")
		return
	}
	if items == nil {
		items = []domain.CommentWithAuthor{}
	}
	ok(c, http.StatusOK, items)
}

// DeleteComment godoc
// @ID          deleteComment
// @Summary     Delete a comment
// @Description Deletes a comment owned by the caller. Comments owned by others, or missing ones, yield 403.
// @Tags        Comments
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      int  true  "Comment ID"  minimum(1)
// @Success     200  {object}  handlers.DeleteCommentResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad comment id"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing token"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /comments/{id} [delete]
func (h *Handlers) DeleteComment(c *gin.Context) {
	uid, authed := currentUser(c)
	if !authed {
		return
	}
	id, valid := utils.ParseID(c.Param("id"))
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "comment id must be a positive integer")
		return
	}

	err := h.commentSvc.Delete(c.Request.Context(), uid, id)
	switch {
	case errors.Is(err, services.ErrCommentForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "could not delete comment")
	default:
		ok(c, http.StatusOK, DeleteCommentResponse{Message: "Comment deleted", Success: true})
	}
}
