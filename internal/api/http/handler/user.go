package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/campusmarket-server/internal/api/http/httperr"
	"github.com/dtroode/campusmarket-server/internal/api/http/middleware"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// UserService serves profile lookups.
type UserService interface {
	Me(ctx context.Context, caller model.SessionClaims) (model.User, error)
	Public(ctx context.Context, email string) (model.PublicProfile, error)
}

// User handles profile endpoints.
type User struct {
	userService UserService
	logger      *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, logger *logger.Logger) *User {
	return &User{userService: userService, logger: logger}
}

type userResponse struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	University     string    `json:"university"`
	Verified       bool      `json:"verified"`
	ProfilePicture *string   `json:"profilePicture"`
	CreatedAt      time.Time `json:"createdAt"`
}

type publicProfileResponse struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	University string `json:"university"`
}

// Me returns the caller's own profile.
func (h *User) Me(c *gin.Context) {
	caller, _ := middleware.SessionFromContext(c)

	user, err := h.userService.Me(c.Request.Context(), caller)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, userResponse{
		ID:             user.ID.String(),
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		University:     user.University,
		Verified:       user.Verified,
		ProfilePicture: user.ProfilePicture,
		CreatedAt:      user.CreatedAt,
	})
}

// Public returns the public profile of the :email path parameter.
func (h *User) Public(c *gin.Context) {
	profile, err := h.userService.Public(c.Request.Context(), c.Param("email"))
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, publicProfileResponse(profile))
}
