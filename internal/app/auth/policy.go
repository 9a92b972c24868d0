package auth

import (
	"github.com/fasbit/thesisvault/internal/app/models"
)

// Policy decides what a principal may see and do with thesis records. All
// predicates are pure: they read only the principal and the record's
// publication state, never storage. Every access point in the application
// goes through these predicates so that list filtering and single-record
// checks cannot drift apart.
//
// The privilege split is deliberate and asymmetric: coordinators own the
// moderation and visibility workflow, admins own the destructive lifecycle
// (account creation, record deletion). An admin cannot approve, reject or
// hide a thesis.

// IsRestricted reports whether a record is withheld from the public
// catalog: hidden, or in any status other than approved.
func IsRestricted(status models.ThesisStatus, hidden bool) bool {
	return hidden || status != models.StatusApproved
}

// ThesisRestricted is IsRestricted applied to a record.
func ThesisRestricted(t *models.Thesis) bool {
	return IsRestricted(t.Status, t.Hidden)
}

// CanView reports whether p may see the record's details. Staff always can;
// the student the record is about can regardless of moderation state;
// everyone else only when the record is not restricted.
func CanView(p Principal, t *models.Thesis) bool {
	if !ThesisRestricted(t) {
		return true
	}
	if p.IsStaff() {
		return true
	}
	return p.Role == models.RoleStudent && p.StudentID == t.StudentID
}

// CanDownload reports whether p may fetch the record's stored file. The
// visibility rule is identical to CanView; the transport layer additionally
// requires the caller to be authenticated.
func CanDownload(p Principal, t *models.Thesis) bool {
	return CanView(p, t)
}

// CanListUnfiltered reports whether a listing for p may omit the
// approved-and-not-hidden filter.
func CanListUnfiltered(p Principal) bool {
	return p.IsStaff()
}

// CanModerate reports whether p may change a record's status. Coordinator
// only; admin is excluded from the moderation workflow.
func CanModerate(p Principal) bool {
	return p.Role == models.RoleCoordinator
}

// CanToggleVisibility reports whether p may change the hidden flag.
func CanToggleVisibility(p Principal) bool {
	return p.Role == models.RoleCoordinator
}

// CanCreate reports whether p may upload a new thesis record.
func CanCreate(p Principal) bool {
	return p.Role == models.RoleCoordinator
}

// CanDelete reports whether p may delete a record and its stored files.
func CanDelete(p Principal) bool {
	return p.Role == models.RoleAdmin
}

// CanCreateCoordinator reports whether p may create coordinator accounts.
func CanCreateCoordinator(p Principal) bool {
	return p.Role == models.RoleAdmin
}
