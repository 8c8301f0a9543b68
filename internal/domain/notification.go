package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID         uuid.UUID          `json:"id" db:"id"`
	UserID     uuid.UUID          `json:"user_id" db:"user_id"`
	Type       NotificationType   `json:"type" db:"type"`
	Title      string             `json:"title" db:"title"`
	Message    string             `json:"message" db:"message"`
	Status     NotificationStatus `json:"status" db:"status"`
	EntityType *EntityType        `json:"entity_type,omitempty" db:"entity_type"`
	EntityID   *uuid.UUID         `json:"entity_id,omitempty" db:"entity_id"`
	Metadata   json.RawMessage    `json:"metadata,omitempty" db:"metadata"`
	ReadAt     *time.Time         `json:"read_at,omitempty" db:"read_at"`
	DeletedAt  *time.Time         `json:"-" db:"deleted_at"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifCaseFileAssigned NotificationType = "expediente_assigned"
	NotifCaseFileApproved NotificationType = "expediente_approved"
	NotifCaseFileRejected NotificationType = "expediente_rejected"
	NotifCaseFileReturned NotificationType = "expediente_returned"
	NotifNewsPending      NotificationType = "news_pending_approval"
	NotifNewsForwarded    NotificationType = "news_forwarded"
	NotifNewsPublished    NotificationType = "news_published"
	NotifNewsRejected     NotificationType = "news_rejected"
	NotifCourtSubmission  NotificationType = "court_submission"
)

type NotificationStatus string

const (
	NotificationUnread  NotificationStatus = "unread"
	NotificationRead    NotificationStatus = "read"
	NotificationDeleted NotificationStatus = "deleted"
)

type EntityType string

const (
	EntityCaseFile EntityType = "expediente"
	EntityNews     EntityType = "news"
	EntityDocument EntityType = "document"
	EntityUser     EntityType = "user"
)

// NotifyInput is what a workflow hands to the notification dispatcher.
type NotifyInput struct {
	UserID     uuid.UUID
	Type       NotificationType
	Title      string
	Message    string
	EntityType EntityType
	EntityID   uuid.UUID
	Metadata   NotificationMetadata
}

// NotificationMetadata is the denormalized snapshot stored with a
// notification and used to render its email.
type NotificationMetadata struct {
	CaseFile  *CaseFileSnapshot `json:"case_file,omitempty"`
	News      *NewsSnapshot     `json:"news,omitempty"`
	Comments  *string           `json:"comments,omitempty"`
	ActorName string            `json:"actor_name,omitempty"`
}

type CaseFileSnapshot struct {
	ID           uuid.UUID      `json:"id"`
	CaseNumber   string         `json:"case_number"`
	Title        string         `json:"title"`
	Status       CaseFileStatus `json:"status"`
	CurrentLevel CaseFileLevel  `json:"current_level"`
}

type NewsSnapshot struct {
	ID     uuid.UUID  `json:"id"`
	Title  string     `json:"title"`
	Slug   string     `json:"slug"`
	Type   NewsType   `json:"type"`
	Status NewsStatus `json:"status"`
}

func (c *CaseFile) Snapshot() *CaseFileSnapshot {
	return &CaseFileSnapshot{
		ID:           c.ID,
		CaseNumber:   c.CaseNumber,
		Title:        c.Title,
		Status:       c.Status,
		CurrentLevel: c.CurrentLevel,
	}
}

func (n *News) Snapshot() *NewsSnapshot {
	return &NewsSnapshot{
		ID:     n.ID,
		Title:  n.Title,
		Slug:   n.Slug,
		Type:   n.Type,
		Status: n.Status,
	}
}

type NotificationFilter struct {
	UnreadOnly bool
	Type       *NotificationType
}
