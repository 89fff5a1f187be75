// Account HTTP handlers.
//
//   - POST /register  (create account)
//   - POST /login     (exchange credentials for a bearer token)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gallery-backend/internal/services"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"correct horse battery staple"`
}

// LoginRequest is the JSON payload for logging in with a username or email.
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" example:"alice"`
	Password        string `json:"password"        example:"correct horse battery staple"`
}

// UserView is the public projection of an account.
type UserView struct {
	ID       uint   `json:"id"       example:"1"`
	Username string `json:"username" example:"alice"`
	Email    string `json:"email"    example:"alice@example.com"`
}

// LoginResponse carries the bearer token and the logged-in user.
type LoginResponse struct {
	Message string   `json:"message" example:"Login succeeded"`
	Token   string   `json:"token"   example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User    UserView `json:"user"`
}

// Register godoc
// @ID          register
// @Summary     Register an account
// @Description Creates an account. Usernames are unique case-insensitively; emails are stored lower-cased.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RegisterRequest  true  "Account details"
// @Success     201   {object}  handlers.MessageResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing fields or account exists"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	_, err := h.authSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrUserExists):
		fail(c, http.StatusBadRequest, ErrCodeUserExists, err.Error())
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not register user")
	default:
		message(c, http.StatusCreated, "User registered")
	}
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies a username or email plus password and returns a signed JWT valid for one hour.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.LoginResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	token, u, err := h.authSvc.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	switch {
	case errors.Is(err, services.ErrMissingFields):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not log in")
		return
	}

	ok(c, http.StatusOK, LoginResponse{
		Message: "Login succeeded",
		Token:   token,
		User:    UserView{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}
