package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/campusmarket-server/internal/api/http/httperr"
	"github.com/dtroode/campusmarket-server/internal/apierror"
	"github.com/dtroode/campusmarket-server/internal/logger"
	"github.com/dtroode/campusmarket-server/internal/model"
)

// AuthService defines the account workflows exposed over HTTP.
type AuthService interface {
	Signup(ctx context.Context, params model.SignupParams) error
	RequestVerificationCode(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// Auth handles the /auth endpoints. Parameters are read from the query
// string, a form body or a JSON body.
type Auth struct {
	authService AuthService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, logger *logger.Logger) *Auth {
	return &Auth{authService: authService, logger: logger}
}

type signupRequest struct {
	First      string `form:"first" json:"first"`
	Last       string `form:"last" json:"last"`
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	University string `form:"university" json:"university"`
}

type emailRequest struct {
	Email string `form:"email" json:"email"`
}

type verifyRequest struct {
	Email string `form:"email" json:"email"`
	Code  string `form:"code" json:"code"`
}

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type resetRequest struct {
	Code        string `form:"code" json:"code"`
	NewPassword string `form:"newPassword" json:"newPassword"`
}

func (h *Auth) Signup(c *gin.Context) {
	var req signupRequest
	if !bind(c, &req) {
		return
	}

	err := h.authService.Signup(c.Request.Context(), model.SignupParams{
		FirstName:  req.First,
		LastName:   req.Last,
		Email:      req.Email,
		Password:   req.Password,
		University: req.University,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

// RequestCode sends a verification code.
func (h *Auth) RequestCode(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authService.RequestVerificationCode(c.Request.Context(), req.Email); err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

func (h *Auth) Verify(c *gin.Context) {
	var req verifyRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authService.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully"})
}

func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if !bind(c, &req) {
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Auth) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset link sent"})
}

func (h *Auth) ResetPassword(c *gin.Context) {
	var req resetRequest
	if !bind(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Code, req.NewPassword); err != nil {
		httperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

// bind decodes the request into dst, writing a 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBind(dst); err != nil {
		httperr.Write(c, apierror.NewErrValidation("Malformed request"))
		return false
	}
	return true
}
