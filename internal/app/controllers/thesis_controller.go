package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fasbit/thesisvault/internal/app/models/dto"
	"github.com/fasbit/thesisvault/internal/app/services"
	"github.com/fasbit/thesisvault/internal/middleware"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
)

// ThesisController handles thesis record operations
type ThesisController struct {
	thesisService services.ThesisService
}

// NewThesisController creates a new ThesisController
func NewThesisController(thesisService services.ThesisService) *ThesisController {
	return &ThesisController{thesisService: thesisService}
}

func thesisID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid thesis id"))
		return 0, false
	}
	return id, true
}

// ListTheses handles the public catalog listing with optional free-text
// search. The visible set depends on the caller: staff see everything,
// everyone else only approved and not hidden records.
func (ctrl *ThesisController) ListTheses(c *gin.Context) {
	principal := middleware.GetPrincipal(c)
	search := c.Query("q")

	theses, err := ctrl.thesisService.List(c.Request.Context(), principal, search)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(theses, "Theses retrieved successfully"))
}

// GetThesis handles a single-record fetch. Restricted records return 403
// unless the caller has visibility.
func (ctrl *ThesisController) GetThesis(c *gin.Context) {
	id, ok := thesisID(c)
	if !ok {
		return
	}

	thesis, err := ctrl.thesisService.Get(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(thesis, "Thesis retrieved successfully"))
}

// CreateThesis handles a coordinator upload: multipart metadata plus the
// primary PDF and an optional approval document.
func (ctrl *ThesisController) CreateThesis(c *gin.Context) {
	var req dto.CreateThesisRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("invalid upload fields"))
		return
	}

	pdfFile, err := c.FormFile("pdfFile")
	if err != nil {
		pdfFile = nil
	}
	approvalFile, err := c.FormFile("approvalFile")
	if err != nil {
		approvalFile = nil
	}

	thesis, err := ctrl.thesisService.Create(c.Request.Context(), middleware.GetPrincipal(c), &req, pdfFile, approvalFile)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(thesis, "Thesis uploaded successfully"))
}

// UpdateStatus handles a coordinator status overwrite.
func (ctrl *ThesisController) UpdateStatus(c *gin.Context) {
	id, ok := thesisID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("status is required"))
		return
	}

	thesis, err := ctrl.thesisService.UpdateStatus(c.Request.Context(), middleware.GetPrincipal(c), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(thesis, "Status updated successfully"))
}

// SetVisibility handles a coordinator hidden-flag toggle.
func (ctrl *ThesisController) SetVisibility(c *gin.Context) {
	id, ok := thesisID(c)
	if !ok {
		return
	}

	var req dto.SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(c, apperrors.NewValidationError("hidden flag is required"))
		return
	}

	thesis, err := ctrl.thesisService.SetHidden(c.Request.Context(), middleware.GetPrincipal(c), id, req.Hidden)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(thesis, "Visibility updated successfully"))
}

// DeleteThesis handles an admin record deletion, releasing stored files.
func (ctrl *ThesisController) DeleteThesis(c *gin.Context) {
	id, ok := thesisID(c)
	if !ok {
		return
	}

	if err := ctrl.thesisService.Delete(c.Request.Context(), middleware.GetPrincipal(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"id": id}, "Thesis deleted successfully"))
}

// DownloadPDF streams a record's primary document to an authenticated,
// permitted caller and bumps the download counter.
func (ctrl *ThesisController) DownloadPDF(c *gin.Context) {
	id, ok := thesisID(c)
	if !ok {
		return
	}

	path, err := ctrl.thesisService.FetchFile(c.Request.Context(), middleware.GetPrincipal(c), id)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	c.File(path)
}
