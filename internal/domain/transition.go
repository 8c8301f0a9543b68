package domain

import (
	"time"

	"github.com/google/uuid"
)

type ApprovalAction string

const (
	ApprovalSubmit  ApprovalAction = "submit"
	ApprovalApprove ApprovalAction = "approve"
	ApprovalReject  ApprovalAction = "reject"
	ApprovalReturn  ApprovalAction = "return_for_revision"
)

// CaseFileTransition is one row of a case file's approval ledger. Rows are
// only ever appended.
type CaseFileTransition struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	Seq        int64          `json:"-" db:"seq"`
	CaseFileID uuid.UUID      `json:"case_file_id" db:"case_file_id"`
	FromUserID uuid.UUID      `json:"from_user_id" db:"from_user_id"`
	ToUserID   uuid.UUID      `json:"to_user_id" db:"to_user_id"`
	Action     ApprovalAction `json:"action" db:"action"`
	Comments   *string        `json:"comments,omitempty" db:"comments"`
	FromLevel  CaseFileLevel  `json:"from_level" db:"from_level"`
	ToLevel    CaseFileLevel  `json:"to_level" db:"to_level"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`

	FromUserName *string `json:"from_user_name,omitempty" db:"from_user_name"`
	ToUserName   *string `json:"to_user_name,omitempty" db:"to_user_name"`
}

// TransitionMatch selects ledger rows. Zero fields match anything.
type TransitionMatch struct {
	ToLevel *CaseFileLevel
	Actions []ApprovalAction
}

func (m TransitionMatch) Matches(t CaseFileTransition) bool {
	if m.ToLevel != nil && t.ToLevel != *m.ToLevel {
		return false
	}
	if len(m.Actions) == 0 {
		return true
	}
	for _, a := range m.Actions {
		if t.Action == a {
			return true
		}
	}
	return false
}

type NewsAction string

const (
	NewsSubmit            NewsAction = "submit"
	NewsApprove           NewsAction = "approve"
	NewsApproveAndPublish NewsAction = "approve_and_publish"
	NewsPublish           NewsAction = "publish"
	NewsDirectPublish     NewsAction = "direct_publish"
	NewsReject            NewsAction = "reject"
	NewsCourtSubmission   NewsAction = "court_submission"
)

type NewsTransition struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Seq        int64      `json:"-" db:"seq"`
	NewsID     uuid.UUID  `json:"news_id" db:"news_id"`
	FromUserID uuid.UUID  `json:"from_user_id" db:"from_user_id"`
	ToUserID   *uuid.UUID `json:"to_user_id,omitempty" db:"to_user_id"`
	Action     NewsAction `json:"action" db:"action"`
	Comments   *string    `json:"comments,omitempty" db:"comments"`
	FromStatus NewsStatus `json:"from_status" db:"from_status"`
	ToStatus   NewsStatus `json:"to_status" db:"to_status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`

	FromUserName *string `json:"from_user_name,omitempty" db:"from_user_name"`
	ToUserName   *string `json:"to_user_name,omitempty" db:"to_user_name"`
}
