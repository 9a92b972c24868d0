package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fasbit/thesisvault/internal/app/auth"
	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/app/models/dto"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
	"github.com/fasbit/thesisvault/internal/pkg/filestorage"
	"github.com/fasbit/thesisvault/internal/pkg/logger"
)

// ThesisRepo is the store contract the thesis service depends on.
type ThesisRepo interface {
	List(ctx context.Context, search string, publicOnly bool) ([]models.Thesis, error)
	GetByID(ctx context.Context, id int64) (*models.Thesis, error)
	Create(ctx context.Context, t *models.Thesis) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.ThesisStatus) error
	SetHidden(ctx context.Context, id int64, hidden bool) error
	Delete(ctx context.Context, id int64) error
	IncrementDownloads(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// ThesisService defines the interface for thesis record operations. Every
// operation checks the visibility policy before touching storage; a denied
// caller causes no partial effect.
type ThesisService interface {
	List(ctx context.Context, principal auth.Principal, search string) ([]dto.ThesisResponse, error)
	Get(ctx context.Context, principal auth.Principal, id int64) (*dto.ThesisResponse, error)
	Create(ctx context.Context, principal auth.Principal, req *dto.CreateThesisRequest, pdfFile, approvalFile *multipart.FileHeader) (*dto.ThesisResponse, error)
	UpdateStatus(ctx context.Context, principal auth.Principal, id int64, status string) (*dto.ThesisResponse, error)
	SetHidden(ctx context.Context, principal auth.Principal, id int64, hidden bool) (*dto.ThesisResponse, error)
	Delete(ctx context.Context, principal auth.Principal, id int64) error
	FetchFile(ctx context.Context, principal auth.Principal, id int64) (string, error)
}

// thesisServiceImpl implements ThesisService
type thesisServiceImpl struct {
	thesisRepo  ThesisRepo
	fileStorage filestorage.FileStorage
	extractText func(path string) string
}

// NewThesisService creates a new ThesisService. extractText is the
// best-effort full-text extractor applied to uploaded primary documents; it
// must return an empty string on failure.
func NewThesisService(thesisRepo ThesisRepo, fileStorage filestorage.FileStorage, extractText func(path string) string) ThesisService {
	if extractText == nil {
		extractText = func(string) string { return "" }
	}
	return &thesisServiceImpl{
		thesisRepo:  thesisRepo,
		fileStorage: fileStorage,
		extractText: extractText,
	}
}

// List returns thesis summaries newest first. Anonymous and student callers
// only see approved, not hidden records; coordinators and admins see the
// unfiltered catalog.
func (s *thesisServiceImpl) List(ctx context.Context, principal auth.Principal, search string) ([]dto.ThesisResponse, error) {
	publicOnly := !auth.CanListUnfiltered(principal)

	theses, err := s.thesisRepo.List(ctx, search, publicOnly)
	if err != nil {
		return nil, fmt.Errorf("error listing theses: %w", err)
	}

	responses := make([]dto.ThesisResponse, 0, len(theses))
	for i := range theses {
		responses = append(responses, dto.NewThesisResponse(&theses[i]))
	}
	return responses, nil
}

// Get retrieves a single record. Restricted records are only visible to
// staff and to the student the record is about.
func (s *thesisServiceImpl) Get(ctx context.Context, principal auth.Principal, id int64) (*dto.ThesisResponse, error) {
	thesis, err := s.thesisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting thesis: %w", err)
	}
	if thesis == nil {
		return nil, apperrors.ErrThesisNotFound
	}

	if !auth.CanView(principal, thesis) {
		return nil, apperrors.ErrPermissionDenied
	}

	resp := dto.NewThesisResponse(thesis)
	return &resp, nil
}

// Create stores a new thesis record. Upload auto-publishes: the status is
// forced to approved and the download counter starts at zero regardless of
// input. The primary PDF is mandatory.
func (s *thesisServiceImpl) Create(ctx context.Context, principal auth.Principal, req *dto.CreateThesisRequest, pdfFile, approvalFile *multipart.FileHeader) (*dto.ThesisResponse, error) {
	if !auth.CanCreate(principal) {
		return nil, apperrors.ErrPermissionDenied
	}
	if pdfFile == nil {
		return nil, apperrors.ErrMissingPDF
	}

	pdfName, err := s.fileStorage.SaveFile(pdfFile)
	if err != nil {
		return nil, fmt.Errorf("error storing PDF: %w", err)
	}

	var approvalName *string
	if approvalFile != nil {
		name, err := s.fileStorage.SaveFile(approvalFile)
		if err != nil {
			// Roll back the primary document before failing the upload.
			if delErr := s.fileStorage.DeleteFile(pdfName); delErr != nil {
				logger.Warn().Err(delErr).Str("file", pdfName).Msg("Failed to remove PDF after approval store failure")
			}
			return nil, fmt.Errorf("error storing approval document: %w", err)
		}
		approvalName = &name
	}

	year := req.Year
	if year == 0 {
		year = time.Now().Year()
	}

	var thesisDate *time.Time
	if req.ThesisDate != "" {
		if d, err := time.Parse("2006-01-02", req.ThesisDate); err == nil {
			thesisDate = &d
		}
	}

	thesis := &models.Thesis{
		Title:            req.Title,
		Author:           req.StudentName,
		StudentID:        req.StudentID,
		Email:            req.Email,
		Abstract:         req.Abstract,
		Advisor:          req.Advisor,
		Career:           req.Career,
		Year:             year,
		ThesisDate:       thesisDate,
		Keywords:         splitKeywords(req.Keywords),
		Status:           models.StatusApproved,
		Hidden:           req.Hidden,
		Downloads:        0,
		PDFFilename:      pdfName,
		ApprovalFilename: approvalName,
		FullText:         s.extractText(s.fileStorage.FullPath(pdfName)),
		CreatedAt:        time.Now(),
	}

	id, err := s.thesisRepo.Create(ctx, thesis)
	if err != nil {
		return nil, fmt.Errorf("error creating thesis: %w", err)
	}
	thesis.ID = id

	resp := dto.NewThesisResponse(thesis)
	return &resp, nil
}

// UpdateStatus overwrites a record's moderation status. Coordinator only:
// admins are deliberately excluded from the moderation workflow.
func (s *thesisServiceImpl) UpdateStatus(ctx context.Context, principal auth.Principal, id int64, status string) (*dto.ThesisResponse, error) {
	if !auth.CanModerate(principal) {
		return nil, apperrors.ErrPermissionDenied
	}
	if status == "" {
		return nil, apperrors.NewValidationError("status is required")
	}
	newStatus := models.ThesisStatus(status)
	if !newStatus.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	if err := s.thesisRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrThesisNotFound
		}
		return nil, fmt.Errorf("error updating status: %w", err)
	}

	return s.fetch(ctx, id)
}

// SetHidden overwrites a record's hidden flag. Idempotent: setting the same
// value twice is the same as once.
func (s *thesisServiceImpl) SetHidden(ctx context.Context, principal auth.Principal, id int64, hidden bool) (*dto.ThesisResponse, error) {
	if !auth.CanToggleVisibility(principal) {
		return nil, apperrors.ErrPermissionDenied
	}

	if err := s.thesisRepo.SetHidden(ctx, id, hidden); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrThesisNotFound
		}
		return nil, fmt.Errorf("error updating visibility: %w", err)
	}

	return s.fetch(ctx, id)
}

// Delete removes a record and releases its stored files. File removal is
// best-effort: a record counts as deleted even if orphaned files remain.
func (s *thesisServiceImpl) Delete(ctx context.Context, principal auth.Principal, id int64) error {
	if !auth.CanDelete(principal) {
		return apperrors.ErrPermissionDenied
	}

	thesis, err := s.thesisRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error getting thesis: %w", err)
	}
	if thesis == nil {
		return apperrors.ErrThesisNotFound
	}

	if thesis.PDFFilename != "" {
		if err := s.fileStorage.DeleteFile(thesis.PDFFilename); err != nil {
			logger.Warn().Err(err).Int64("thesisID", id).Str("file", thesis.PDFFilename).Msg("Failed to remove PDF during thesis delete")
		}
	}
	if thesis.ApprovalFilename != nil && *thesis.ApprovalFilename != "" {
		if err := s.fileStorage.DeleteFile(*thesis.ApprovalFilename); err != nil {
			logger.Warn().Err(err).Int64("thesisID", id).Str("file", *thesis.ApprovalFilename).Msg("Failed to remove approval document during thesis delete")
		}
	}

	if err := s.thesisRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrThesisNotFound
		}
		return fmt.Errorf("error deleting thesis: %w", err)
	}

	return nil
}

// FetchFile resolves the filesystem path of a record's primary document for
// a permitted download and bumps the download counter. The increment is
// fire-and-forget: its failure never fails the fetch.
func (s *thesisServiceImpl) FetchFile(ctx context.Context, principal auth.Principal, id int64) (string, error) {
	thesis, err := s.thesisRepo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("error getting thesis: %w", err)
	}
	if thesis == nil || thesis.PDFFilename == "" {
		return "", apperrors.ErrFileNotFound
	}

	if !auth.CanDownload(principal, thesis) {
		return "", apperrors.ErrPermissionDenied
	}

	if !s.fileStorage.Exists(thesis.PDFFilename) {
		return "", apperrors.ErrFileNotFound
	}

	// Permission checks are done; the counter update must not block or fail
	// the download itself.
	go func() {
		incCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.thesisRepo.IncrementDownloads(incCtx, id); err != nil {
			logger.Warn().Err(err).Int64("thesisID", id).Msg("Failed to increment download counter")
		}
	}()

	return s.fileStorage.FullPath(thesis.PDFFilename), nil
}

func (s *thesisServiceImpl) fetch(ctx context.Context, id int64) (*dto.ThesisResponse, error) {
	thesis, err := s.thesisRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting thesis: %w", err)
	}
	if thesis == nil {
		return nil, apperrors.ErrThesisNotFound
	}
	resp := dto.NewThesisResponse(thesis)
	return &resp, nil
}

func splitKeywords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}
