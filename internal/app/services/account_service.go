package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	appauth "github.com/fasbit/thesisvault/internal/app/auth"
	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/app/models/dto"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
	pkgauth "github.com/fasbit/thesisvault/internal/pkg/auth"
	"github.com/fasbit/thesisvault/internal/pkg/dberrors"
	"github.com/fasbit/thesisvault/internal/pkg/logger"
)

// UserRepo is the directory contract the account service depends on.
type UserRepo interface {
	GetByLoginKey(ctx context.Context, key string) (*models.User, error)
	LoginKeyExists(ctx context.Context, key string) (bool, error)
	EmailExists(ctx context.Context, key string) (bool, error)
	Create(ctx context.Context, u *models.User) (int64, error)
	UpsertStudent(ctx context.Context, email, studentID, passwordHash string) error
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// EnrollmentRecord is one row of the enrollment roster: the student's
// matricula, the secondary attribute the initial password derives from, and
// a contact email.
type EnrollmentRecord struct {
	Matricula string
	CURP      string
	Email     string
}

// AccountService defines account directory operations.
type AccountService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	CreateCoordinator(ctx context.Context, principal appauth.Principal, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	EnrollStudents(ctx context.Context, roster []EnrollmentRecord) (int, error)
	Stats(ctx context.Context, principal appauth.Principal) (*dto.StatsResponse, error)
}

// accountServiceImpl implements AccountService
type accountServiceImpl struct {
	userRepo   UserRepo
	thesisRepo ThesisRepo
	jwtService *pkgauth.JWTService
}

// NewAccountService creates a new AccountService
func NewAccountService(userRepo UserRepo, thesisRepo ThesisRepo, jwtService *pkgauth.JWTService) AccountService {
	return &accountServiceImpl{
		userRepo:   userRepo,
		thesisRepo: thesisRepo,
		jwtService: jwtService,
	}
}

// Login authenticates a caller by login key and password. The key matches
// either an account email or a student matricula; the two share one
// namespace, so a single lookup checks both.
func (s *accountServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	key := strings.TrimSpace(req.LoginKey)
	if key == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("login and password are required")
	}

	user, err := s.userRepo.GetByLoginKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error looking up account: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !pkgauth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
		User: dto.LoginUser{
			ID:        user.ID,
			Email:     user.Email,
			Role:      string(user.Role),
			StudentID: user.StudentID,
		},
	}, nil
}

// CreateCoordinator creates a coordinator account. Admin only; the route
// only ever creates coordinators, other roles are rejected.
func (s *accountServiceImpl) CreateCoordinator(ctx context.Context, principal appauth.Principal, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	if !appauth.CanCreateCoordinator(principal) {
		return nil, apperrors.ErrPermissionDenied
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return nil, apperrors.NewValidationError("email, password and role are required")
	}
	if models.Role(req.Role) != models.RoleCoordinator {
		return nil, apperrors.NewValidationError("only coordinator accounts can be created through this route")
	}

	// The email column shares its namespace with student matriculas, so the
	// collision check spans both.
	exists, err := s.userRepo.LoginKeyExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking login key: %w", err)
	}
	if exists {
		return nil, apperrors.ErrLoginKeyExists
	}

	hash, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:     req.Email,
		Password:  hash,
		Role:      models.RoleCoordinator,
		CreatedAt: time.Now(),
	}

	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil, apperrors.ErrLoginKeyExists
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	logger.Info().Int64("adminID", principal.UserID).Str("email", req.Email).Msg("Coordinator account created")

	return &dto.UserResponse{
		ID:    id,
		Email: user.Email,
		Role:  string(user.Role),
	}, nil
}

// EnrollStudents provisions one student account per roster row. The initial
// password is the student's CURP; an already-enrolled matricula gets its
// password reset to the roster value. Rows missing a matricula or CURP are
// skipped. A matricula that is already taken as an account email stops the
// import: the two columns share one login namespace and a duplicate key
// would make login lookups ambiguous. Returns the number of accounts
// processed.
func (s *accountServiceImpl) EnrollStudents(ctx context.Context, roster []EnrollmentRecord) (int, error) {
	processed := 0
	for _, rec := range roster {
		matricula := strings.TrimSpace(rec.Matricula)
		curp := strings.TrimSpace(rec.CURP)
		if matricula == "" || curp == "" {
			logger.Warn().Str("matricula", rec.Matricula).Msg("Skipping roster row with missing matricula or CURP")
			continue
		}

		// Re-enrolling the same matricula is fine (the upsert resets the
		// password); colliding with another account's email is not.
		taken, err := s.userRepo.EmailExists(ctx, matricula)
		if err != nil {
			return processed, fmt.Errorf("error checking login key for %s: %w", matricula, err)
		}
		if taken {
			return processed, fmt.Errorf("matricula %s is already taken as an account email: %w", matricula, apperrors.ErrLoginKeyExists)
		}

		hash, err := pkgauth.HashPassword(curp)
		if err != nil {
			return processed, fmt.Errorf("error hashing credential for %s: %w", matricula, err)
		}

		if err := s.userRepo.UpsertStudent(ctx, strings.TrimSpace(rec.Email), matricula, hash); err != nil {
			return processed, fmt.Errorf("error enrolling student %s: %w", matricula, err)
		}

		logger.Info().Str("matricula", matricula).Msg("Student account enrolled")
		processed++
	}
	return processed, nil
}

// Stats returns catalog totals for any authenticated caller.
func (s *accountServiceImpl) Stats(ctx context.Context, principal appauth.Principal) (*dto.StatsResponse, error) {
	if principal.IsAnonymous() {
		return nil, apperrors.ErrUnauthorized
	}

	theses, err := s.thesisRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting theses: %w", err)
	}
	coordinators, err := s.userRepo.CountByRole(ctx, models.RoleCoordinator)
	if err != nil {
		return nil, fmt.Errorf("error counting coordinators: %w", err)
	}

	return &dto.StatsResponse{
		Theses:       theses,
		Coordinators: coordinators,
	}, nil
}
