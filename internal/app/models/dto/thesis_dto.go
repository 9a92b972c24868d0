package dto

import (
	"time"

	"github.com/fasbit/thesisvault/internal/app/models"
)

// CreateThesisRequest carries the multipart metadata fields of an upload.
// The two file attachments travel separately as multipart file parts.
type CreateThesisRequest struct {
	Title       string `form:"title"`
	StudentName string `form:"studentName"`
	StudentID   string `form:"studentId"`
	Email       string `form:"email"`
	Abstract    string `form:"abstract"`
	Advisor     string `form:"advisor"`
	Career      string `form:"career"`
	Year        int    `form:"year"`
	ThesisDate  string `form:"thesis_date"` // YYYY-MM-DD, optional
	Keywords    string `form:"keywords"`    // comma separated
	Hidden      bool   `form:"hidden"`
}

// UpdateStatusRequest sets a new moderation status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SetVisibilityRequest toggles the hidden flag.
type SetVisibilityRequest struct {
	Hidden bool `json:"hidden"`
}

// ThesisResponse is the public representation of a thesis record.
type ThesisResponse struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Author           string     `json:"author"`
	StudentID        string     `json:"studentId,omitempty"`
	Abstract         string     `json:"abstract"`
	Advisor          string     `json:"advisor"`
	Career           string     `json:"career"`
	Year             int        `json:"year"`
	ThesisDate       *time.Time `json:"thesisDate,omitempty"`
	Keywords         []string   `json:"keywords"`
	Status           string     `json:"status"`
	Hidden           bool       `json:"hidden"`
	Downloads        int64      `json:"downloads"`
	PDFFilename      string     `json:"pdfFilename"`
	ApprovalFilename *string    `json:"approvalFilename,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// NewThesisResponse converts a Thesis model to its response DTO.
func NewThesisResponse(t *models.Thesis) ThesisResponse {
	keywords := t.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return ThesisResponse{
		ID:               t.ID,
		Title:            t.Title,
		Author:           t.Author,
		StudentID:        t.StudentID,
		Abstract:         t.Abstract,
		Advisor:          t.Advisor,
		Career:           t.Career,
		Year:             t.Year,
		ThesisDate:       t.ThesisDate,
		Keywords:         keywords,
		Status:           string(t.Status),
		Hidden:           t.Hidden,
		Downloads:        t.Downloads,
		PDFFilename:      t.PDFFilename,
		ApprovalFilename: t.ApprovalFilename,
		CreatedAt:        t.CreatedAt,
	}
}

// StatsResponse is the authenticated stats summary.
type StatsResponse struct {
	Theses       int64 `json:"theses"`
	Coordinators int64 `json:"coordinators"`
}
