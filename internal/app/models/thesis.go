package models

import (
	"time"
)

// ThesisStatus is the moderation state of a thesis record.
type ThesisStatus string

const (
	StatusPending     ThesisStatus = "pending"
	StatusCorrections ThesisStatus = "corrections"
	StatusApproved    ThesisStatus = "approved"
	StatusRejected    ThesisStatus = "rejected"
)

// Valid reports whether s is one of the known status values.
func (s ThesisStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCorrections, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// NextStatuses returns the statuses the review workflow moves to from s.
// The status update endpoint performs a direct overwrite and does not
// enforce this map; it documents the intended coordinator workflow and is
// checked by WorkflowAllows.
func (s ThesisStatus) NextStatuses() []ThesisStatus {
	switch s {
	case StatusPending:
		return []ThesisStatus{StatusCorrections, StatusApproved, StatusRejected}
	case StatusCorrections:
		return []ThesisStatus{StatusApproved, StatusRejected}
	}
	return nil
}

// WorkflowAllows reports whether the intended review workflow moves from s
// to next. Setting the same status again is always allowed (idempotent
// writes).
func (s ThesisStatus) WorkflowAllows(next ThesisStatus) bool {
	if s == next {
		return true
	}
	for _, n := range s.NextStatuses() {
		if n == next {
			return true
		}
	}
	return false
}

// Thesis defines the thesis model based on the 'theses' table
type Thesis struct {
	ID               int64        `json:"id" db:"id"`
	Title            string       `json:"title" db:"title"`
	Author           string       `json:"author" db:"author"`
	StudentID        string       `json:"studentId" db:"student_id"` // matricula of the student the thesis is about
	Email            string       `json:"email" db:"email"`
	Abstract         string       `json:"abstract" db:"abstract"`
	Advisor          string       `json:"advisor" db:"advisor"`
	Career           string       `json:"career" db:"career"`
	Year             int          `json:"year" db:"year"`
	ThesisDate       *time.Time   `json:"thesisDate,omitempty" db:"thesis_date"`
	Keywords         []string     `json:"keywords" db:"keywords"`
	Status           ThesisStatus `json:"status" db:"status"`
	Hidden           bool         `json:"hidden" db:"hidden"`
	Downloads        int64        `json:"downloads" db:"downloads"`
	PDFFilename      string       `json:"pdfFilename" db:"pdf_filename"`
	ApprovalFilename *string      `json:"approvalFilename,omitempty" db:"approval_filename"`
	FullText         string       `json:"-" db:"fulltext"` // extracted PDF text, search only
	CreatedAt        time.Time    `json:"createdAt" db:"created_at"`
}
