package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appauth "github.com/fasbit/thesisvault/internal/app/auth"
	"github.com/fasbit/thesisvault/internal/app/models"
	"github.com/fasbit/thesisvault/internal/app/models/dto"
	"github.com/fasbit/thesisvault/internal/pkg/apperrors"
	pkgauth "github.com/fasbit/thesisvault/internal/pkg/auth"
)

// fakeUserRepo is an in-memory UserRepo for service tests.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64

	failCreateUnique bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (f *fakeUserRepo) GetByLoginKey(_ context.Context, key string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == key || (u.StudentID != nil && *u.StudentID == key) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) LoginKeyExists(_ context.Context, key string) (bool, error) {
	u, _ := f.GetByLoginKey(context.Background(), key)
	return u != nil, nil
}

func (f *fakeUserRepo) EmailExists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == key {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) matches(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.users {
		if u.Email == key || (u.StudentID != nil && *u.StudentID == key) {
			n++
		}
	}
	return n
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateUnique {
		return 0, &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	}
	f.nextID++
	stored := *u
	stored.ID = f.nextID
	f.users[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeUserRepo) UpsertStudent(_ context.Context, email, studentID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.StudentID != nil && *u.StudentID == studentID {
			u.Password = passwordHash
			return nil
		}
	}
	f.nextID++
	matricula := studentID
	f.users[f.nextID] = &models.User{
		ID:        f.nextID,
		Email:     email,
		StudentID: &matricula,
		Password:  passwordHash,
		Role:      models.RoleStudent,
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context, role models.Role) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) addUser(email, matricula, password string, role models.Role) int64 {
	hash, _ := pkgauth.HashPassword(password)
	u := &models.User{Email: email, Password: hash, Role: role, CreatedAt: time.Now()}
	if matricula != "" {
		u.StudentID = &matricula
	}
	id, _ := f.Create(context.Background(), u)
	return id
}

func newTestAccountService() (AccountService, *fakeUserRepo, *fakeThesisRepo, *pkgauth.JWTService) {
	userRepo := newFakeUserRepo()
	thesisRepo := newFakeThesisRepo()
	jwtService := pkgauth.NewJWTService(pkgauth.JWTConfig{
		SecretKey:      "test-secret-at-least-32-chars!!!",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "thesisvault-test",
	})
	svc := NewAccountService(userRepo, thesisRepo, jwtService)
	return svc, userRepo, thesisRepo, jwtService
}

func TestLogin_ByEmail(t *testing.T) {
	svc, users, _, jwtService := newTestAccountService()
	users.addUser("coord@fasbit.local", "", "hunter22", models.RoleCoordinator)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "coord@fasbit.local", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "coord@fasbit.local", resp.User.Email)
	assert.Equal(t, string(models.RoleCoordinator), resp.User.Role)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := jwtService.ValidateAndExtractClaims(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestLogin_ByMatricula(t *testing.T) {
	svc, users, _, _ := newTestAccountService()
	users.addUser("a00123456@fasbit.local", "A00123456", "CURPVALUE123", models.RoleStudent)

	// The same account is reachable by either key.
	resp, err := svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "A00123456", Password: "CURPVALUE123"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.StudentID)
	assert.Equal(t, "A00123456", *resp.User.StudentID)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "a00123456@fasbit.local", Password: "CURPVALUE123"})
	require.NoError(t, err)
}

func TestLogin_TrimsKey(t *testing.T) {
	svc, users, _, _ := newTestAccountService()
	users.addUser("coord@fasbit.local", "", "hunter22", models.RoleCoordinator)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "  coord@fasbit.local  ", Password: "hunter22"})
	assert.NoError(t, err)
}

func TestLogin_Failures(t *testing.T) {
	svc, users, _, _ := newTestAccountService()
	users.addUser("coord@fasbit.local", "", "hunter22", models.RoleCoordinator)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "coord@fasbit.local", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "nobody@fasbit.local", Password: "hunter22"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "unknown accounts and bad passwords are indistinguishable")

	_, err = svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "", Password: "hunter22"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "coord@fasbit.local", Password: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

var adminPrincipal = appauth.Principal{Role: models.RoleAdmin, UserID: 1, Email: "admin@fasbit.local"}

func TestCreateCoordinator(t *testing.T) {
	svc, users, _, _ := newTestAccountService()

	req := &dto.CreateUserRequest{Email: "newcoord@fasbit.local", Password: "secret99", Role: "coordinator"}
	resp, err := svc.CreateCoordinator(context.Background(), adminPrincipal, req)
	require.NoError(t, err)
	assert.Equal(t, "newcoord@fasbit.local", resp.Email)
	assert.Equal(t, "coordinator", resp.Role)
	assert.NotZero(t, resp.ID)

	// Stored password is hashed, never the plaintext.
	stored, err := users.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret99", stored.Password)
	assert.True(t, pkgauth.CheckPassword(stored.Password, "secret99"))
}

func TestCreateCoordinator_AdminOnly(t *testing.T) {
	svc, _, _, _ := newTestAccountService()
	req := &dto.CreateUserRequest{Email: "x@fasbit.local", Password: "secret99", Role: "coordinator"}

	for _, p := range []appauth.Principal{
		appauth.Anonymous,
		{Role: models.RoleStudent, UserID: 42, StudentID: "A001"},
		{Role: models.RoleCoordinator, UserID: 7},
	} {
		_, err := svc.CreateCoordinator(context.Background(), p, req)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	}
}

func TestCreateCoordinator_RejectsOtherRoles(t *testing.T) {
	svc, _, _, _ := newTestAccountService()

	for _, role := range []string{"admin", "student", "superuser"} {
		_, err := svc.CreateCoordinator(context.Background(), adminPrincipal,
			&dto.CreateUserRequest{Email: "x@fasbit.local", Password: "secret99", Role: role})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, role)
	}
}

func TestCreateCoordinator_MissingFields(t *testing.T) {
	svc, _, _, _ := newTestAccountService()

	_, err := svc.CreateCoordinator(context.Background(), adminPrincipal,
		&dto.CreateUserRequest{Email: "", Password: "secret99", Role: "coordinator"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateCoordinator_LoginKeyCollision(t *testing.T) {
	svc, users, _, _ := newTestAccountService()
	users.addUser("taken@fasbit.local", "", "pw", models.RoleCoordinator)
	users.addUser("student@fasbit.local", "A00123456", "pw", models.RoleStudent)

	_, err := svc.CreateCoordinator(context.Background(), adminPrincipal,
		&dto.CreateUserRequest{Email: "taken@fasbit.local", Password: "secret99", Role: "coordinator"})
	assert.ErrorIs(t, err, apperrors.ErrLoginKeyExists)

	// The namespace spans matriculas too.
	_, err = svc.CreateCoordinator(context.Background(), adminPrincipal,
		&dto.CreateUserRequest{Email: "A00123456", Password: "secret99", Role: "coordinator"})
	assert.ErrorIs(t, err, apperrors.ErrLoginKeyExists)
}

func TestCreateCoordinator_RacedUniqueViolation(t *testing.T) {
	svc, users, _, _ := newTestAccountService()
	users.failCreateUnique = true

	// The pre-check passes but the insert loses a race; the database unique
	// violation maps to the same conflict error.
	_, err := svc.CreateCoordinator(context.Background(), adminPrincipal,
		&dto.CreateUserRequest{Email: "x@fasbit.local", Password: "secret99", Role: "coordinator"})
	assert.ErrorIs(t, err, apperrors.ErrLoginKeyExists)
}

func TestEnrollStudents(t *testing.T) {
	svc, users, _, _ := newTestAccountService()

	roster := []EnrollmentRecord{
		{Matricula: "A001", CURP: "CURP001AAAA", Email: "a001@fasbit.local"},
		{Matricula: "A002", CURP: "CURP002BBBB", Email: ""},
		{Matricula: "", CURP: "CURP003CCCC", Email: "orphan@fasbit.local"}, // skipped
		{Matricula: "A004", CURP: "", Email: "a004@fasbit.local"},          // skipped
	}

	processed, err := svc.EnrollStudents(context.Background(), roster)
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	// The initial password is the CURP, stored hashed.
	u, err := users.GetByLoginKey(context.Background(), "A001")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, models.RoleStudent, u.Role)
	assert.True(t, pkgauth.CheckPassword(u.Password, "CURP001AAAA"))

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{LoginKey: "A001", Password: "CURP001AAAA"})
	require.NoError(t, err)
	assert.Equal(t, string(models.RoleStudent), resp.User.Role)
}

func TestEnrollStudents_MatriculaTakenAsEmail(t *testing.T) {
	svc, users, _, _ := newTestAccountService()
	users.addUser("A00555", "", "pw", models.RoleCoordinator)

	// A matricula equal to an existing account's email would leave two
	// accounts answering to one login key.
	processed, err := svc.EnrollStudents(context.Background(), []EnrollmentRecord{
		{Matricula: "A00555", CURP: "CURPVALUE", Email: "a00555@fasbit.local"},
	})
	assert.ErrorIs(t, err, apperrors.ErrLoginKeyExists)
	assert.Equal(t, 0, processed)
	assert.Equal(t, 1, users.matches("A00555"), "exactly one account answers to the key")
}

func TestEnrollStudents_CollisionStopsImport(t *testing.T) {
	svc, users, _, _ := newTestAccountService()
	users.addUser("A00555", "", "pw", models.RoleCoordinator)

	roster := []EnrollmentRecord{
		{Matricula: "A001", CURP: "CURP001", Email: "a001@fasbit.local"},
		{Matricula: "A00555", CURP: "CURP555", Email: "a00555@fasbit.local"},
		{Matricula: "A003", CURP: "CURP003", Email: "a003@fasbit.local"},
	}

	processed, err := svc.EnrollStudents(context.Background(), roster)
	assert.ErrorIs(t, err, apperrors.ErrLoginKeyExists)
	assert.Equal(t, 1, processed, "rows before the collision are kept")

	u, err := users.GetByLoginKey(context.Background(), "A003")
	require.NoError(t, err)
	assert.Nil(t, u, "rows after the collision are not reached")
}

func TestEnrollStudents_ReenrollResetsPassword(t *testing.T) {
	svc, users, _, _ := newTestAccountService()

	_, err := svc.EnrollStudents(context.Background(), []EnrollmentRecord{
		{Matricula: "A001", CURP: "OLDCURP", Email: "a001@fasbit.local"},
	})
	require.NoError(t, err)

	_, err = svc.EnrollStudents(context.Background(), []EnrollmentRecord{
		{Matricula: "A001", CURP: "NEWCURP", Email: "a001@fasbit.local"},
	})
	require.NoError(t, err)

	u, err := users.GetByLoginKey(context.Background(), "A001")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.False(t, pkgauth.CheckPassword(u.Password, "OLDCURP"))
	assert.True(t, pkgauth.CheckPassword(u.Password, "NEWCURP"))
}

func TestStats(t *testing.T) {
	svc, users, theses, _ := newTestAccountService()
	users.addUser("c1@fasbit.local", "", "pw", models.RoleCoordinator)
	users.addUser("c2@fasbit.local", "", "pw", models.RoleCoordinator)
	users.addUser("admin@fasbit.local", "", "pw", models.RoleAdmin)
	seedThesis(theses, models.StatusApproved, false, "A001")
	seedThesis(theses, models.StatusPending, true, "A002")

	_, err := svc.Stats(context.Background(), appauth.Anonymous)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	stats, err := svc.Stats(context.Background(), appauth.Principal{Role: models.RoleStudent, UserID: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Theses, "stats count every record regardless of visibility")
	assert.Equal(t, int64(2), stats.Coordinators)
}
