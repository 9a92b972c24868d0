package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fasbit/thesisvault/internal/app/models/dto"
	"github.com/fasbit/thesisvault/internal/app/services"
	"github.com/fasbit/thesisvault/internal/middleware"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
)

// AuthController handles authentication operations
type AuthController struct {
	accountService services.AccountService
}

// NewAuthController creates a new AuthController
func NewAuthController(accountService services.AccountService) *AuthController {
	return &AuthController{accountService: accountService}
}

// Login authenticates by email or student matricula plus password and
// returns a signed, time-boxed token.
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("login and password are required"))
		return
	}

	token, err := ctrl.accountService.Login(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(token, "Login successful"))
}
