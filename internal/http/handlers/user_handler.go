// User HTTP handlers: registration, login, and profile lookup.
//
// These endpoints sit outside the generation core; they follow the standard
// bcrypt + JWT pattern and exist so the frontend can attribute prompts to a
// real account instead of the anonymous fallback owner.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/theendpage/go-farewell-backend/internal/domain"
	"github.com/theendpage/go-farewell-backend/internal/services"
)

// RegisterRequest is the JSON payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Register godoc
// @ID          registerUser
// @Summary     Create an account
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterRequest  true "Account payload"
//
// @Success     201  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name, email, and password (8+ chars) are required")
		return
	}

	u, err := h.userSvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, u)
}

// Login godoc
// @ID          loginUser
// @Summary     Log in
// @Tags        Users
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password are required")
		return
	}

	u, token, err := h.userSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, User: u})
}

// GetUser godoc
// @ID          getUser
// @Summary     Fetch a user profile
// @Tags        Users
// @Produce     json
//
// @Param       id  path  int  true "User id"
//
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse "User not found"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a positive integer")
		return
	}

	u, err := h.userSvc.Profile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, u)
}
