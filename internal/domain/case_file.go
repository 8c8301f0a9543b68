package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CaseFileStatus string

const (
	CaseFileDraft           CaseFileStatus = "draft"
	CaseFilePendingApproval CaseFileStatus = "pending_approval"
	CaseFileApproved        CaseFileStatus = "approved"
	CaseFileRejected        CaseFileStatus = "rejected"
)

func (s CaseFileStatus) IsValid() bool {
	switch s {
	case CaseFileDraft, CaseFilePendingApproval, CaseFileApproved, CaseFileRejected:
		return true
	default:
		return false
	}
}

type CaseFileLevel string

const (
	LevelJudge            CaseFileLevel = "juez"
	LevelAppealsPresident CaseFileLevel = "presidente_audiencia"
	LevelSecretaryGeneral CaseFileLevel = "secretario_general"
)

type CaseFile struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	CaseNumber   string         `json:"case_number" db:"case_number"`
	Title        string         `json:"title" db:"title"`
	Description  *string        `json:"description,omitempty" db:"description"`
	Status       CaseFileStatus `json:"status" db:"status"`
	CurrentLevel CaseFileLevel  `json:"current_level" db:"current_level"`
	DepartmentID uuid.UUID      `json:"department_id" db:"department_id"`
	CreatedBy    uuid.UUID      `json:"created_by" db:"created_by"`
	AssignedTo   *uuid.UUID     `json:"assigned_to,omitempty" db:"assigned_to"`
	Version      int            `json:"version" db:"version"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`

	Documents []Document `json:"documents,omitempty" db:"-"`
}

// IsEditable reports whether title and description may still change.
func (c *CaseFile) IsEditable() bool {
	return c.Status == CaseFileDraft || c.Status == CaseFileRejected
}

func (c *CaseFile) IsAssignedTo(userID uuid.UUID) bool {
	return c.AssignedTo != nil && *c.AssignedTo == userID
}

// AwaitingReview is true while a reviewer holds the file: pending approval,
// or sent back by the secretary general to the appeals president.
func (c *CaseFile) AwaitingReview() bool {
	if c.Status == CaseFilePendingApproval {
		return true
	}
	return c.Status == CaseFileDraft && c.CurrentLevel == LevelAppealsPresident
}

func FormatCaseNumber(year int, seq int64) string {
	return fmt.Sprintf("%d-%05d", year, seq)
}

type CreateCaseFileInput struct {
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	DepartmentID *uuid.UUID `json:"department_id,omitempty"`
}

func (in CreateCaseFileInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ValidationFailed("title is required")
	}
	if len(in.Title) > 255 {
		return ValidationFailed("title must be at most 255 characters")
	}
	return nil
}

type UpdateCaseFileInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (in UpdateCaseFileInput) Validate() error {
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return ValidationFailed("title cannot be empty")
	}
	if in.Title != nil && len(*in.Title) > 255 {
		return ValidationFailed("title must be at most 255 characters")
	}
	return nil
}

type CaseFileFilter struct {
	Search       string
	Status       *CaseFileStatus
	DepartmentID *uuid.UUID

	// Scope limits the listing to what the caller may see. Nil means all.
	ScopeDepartmentID *uuid.UUID
	ScopeUserID       *uuid.UUID
}

type CaseFileStats struct {
	Total        int64                    `json:"total"`
	ByStatus     map[CaseFileStatus]int64 `json:"by_status"`
	PendingForMe int64                    `json:"pending_for_me"`
}
