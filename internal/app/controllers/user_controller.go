package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fasbit/thesisvault/internal/app/models/dto"
	"github.com/fasbit/thesisvault/internal/app/services"
	"github.com/fasbit/thesisvault/internal/middleware"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
)

// UserController handles account management and stats operations
type UserController struct {
	accountService services.AccountService
}

// NewUserController creates a new UserController
func NewUserController(accountService services.AccountService) *UserController {
	return &UserController{accountService: accountService}
}

// CreateUser handles admin creation of coordinator accounts.
func (ctrl *UserController) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("email, password and role are required"))
		return
	}

	user, err := ctrl.accountService.CreateCoordinator(c.Request.Context(), middleware.GetPrincipal(c), &req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(user, "Account created successfully"))
}

// GetStats returns catalog totals for any authenticated caller.
func (ctrl *UserController) GetStats(c *gin.Context) {
	stats, err := ctrl.accountService.Stats(c.Request.Context(), middleware.GetPrincipal(c))
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(stats, "Stats retrieved successfully"))
}
