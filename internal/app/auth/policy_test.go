package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fasbit/thesisvault/internal/app/models"
)

func thesisWith(status models.ThesisStatus, hidden bool, studentID string) *models.Thesis {
	return &models.Thesis{
		ID:        1,
		Title:     "Distributed Consensus in Sensor Networks",
		StudentID: studentID,
		Status:    status,
		Hidden:    hidden,
	}
}

func student(matricula string) Principal {
	return Principal{Role: models.RoleStudent, UserID: 42, StudentID: matricula}
}

var (
	coordinator = Principal{Role: models.RoleCoordinator, UserID: 7, Email: "coord@fasbit.local"}
	admin       = Principal{Role: models.RoleAdmin, UserID: 1, Email: "admin@fasbit.local"}
)

func TestIsRestricted(t *testing.T) {
	tests := []struct {
		name   string
		status models.ThesisStatus
		hidden bool
		want   bool
	}{
		{"approved and visible", models.StatusApproved, false, false},
		{"approved but hidden", models.StatusApproved, true, true},
		{"pending", models.StatusPending, false, true},
		{"pending and hidden", models.StatusPending, true, true},
		{"corrections", models.StatusCorrections, false, true},
		{"rejected", models.StatusRejected, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRestricted(tt.status, tt.hidden))
		})
	}
}

func TestCanView_PublicRecord(t *testing.T) {
	record := thesisWith(models.StatusApproved, false, "A001")

	assert.True(t, CanView(Anonymous, record))
	assert.True(t, CanView(student("B999"), record))
	assert.True(t, CanView(coordinator, record))
	assert.True(t, CanView(admin, record))
}

func TestCanView_RestrictedRecord(t *testing.T) {
	record := thesisWith(models.StatusPending, false, "A001")

	assert.False(t, CanView(Anonymous, record))
	assert.False(t, CanView(student("B999"), record))
	assert.True(t, CanView(student("A001"), record), "students see their own record regardless of status")
	assert.True(t, CanView(coordinator, record))
	assert.True(t, CanView(admin, record))
}

func TestCanView_HiddenApprovedRecord(t *testing.T) {
	record := thesisWith(models.StatusApproved, true, "A001")

	assert.False(t, CanView(Anonymous, record))
	assert.True(t, CanView(student("A001"), record))
	assert.True(t, CanView(coordinator, record))
}

func TestCanView_OwnershipRequiresStudentRole(t *testing.T) {
	// A matching matricula on a non-student principal grants nothing extra;
	// ownership only applies to the student role.
	record := thesisWith(models.StatusPending, false, "A001")
	p := Principal{Role: models.Role("anonymous"), StudentID: "A001"}

	assert.False(t, CanView(p, record))
}

func TestCanDownload_MatchesCanView(t *testing.T) {
	records := []*models.Thesis{
		thesisWith(models.StatusApproved, false, "A001"),
		thesisWith(models.StatusPending, false, "A001"),
		thesisWith(models.StatusApproved, true, "A001"),
		thesisWith(models.StatusRejected, true, "A001"),
	}
	principals := []Principal{Anonymous, student("A001"), student("B999"), coordinator, admin}

	for _, r := range records {
		for _, p := range principals {
			assert.Equal(t, CanView(p, r), CanDownload(p, r))
		}
	}
}

func TestCanListUnfiltered(t *testing.T) {
	assert.False(t, CanListUnfiltered(Anonymous))
	assert.False(t, CanListUnfiltered(student("A001")))
	assert.True(t, CanListUnfiltered(coordinator))
	assert.True(t, CanListUnfiltered(admin))
}

func TestPrivilegeSplit(t *testing.T) {
	// Coordinators own the moderation workflow, admins own the destructive
	// lifecycle. Neither inherits the other's powers.
	assert.True(t, CanModerate(coordinator))
	assert.False(t, CanModerate(admin))
	assert.False(t, CanModerate(student("A001")))
	assert.False(t, CanModerate(Anonymous))

	assert.True(t, CanToggleVisibility(coordinator))
	assert.False(t, CanToggleVisibility(admin))

	assert.True(t, CanCreate(coordinator))
	assert.False(t, CanCreate(admin))

	assert.True(t, CanDelete(admin))
	assert.False(t, CanDelete(coordinator))

	assert.True(t, CanCreateCoordinator(admin))
	assert.False(t, CanCreateCoordinator(coordinator))
}

func TestPrincipalHelpers(t *testing.T) {
	assert.True(t, Anonymous.IsAnonymous())
	assert.False(t, Anonymous.IsStaff())

	assert.False(t, student("A001").IsAnonymous())
	assert.False(t, student("A001").IsStaff())

	assert.True(t, coordinator.IsStaff())
	assert.True(t, admin.IsStaff())
}
