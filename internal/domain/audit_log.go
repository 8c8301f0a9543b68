package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     uuid.UUID       `json:"user_id" db:"user_id"`
	UserName   *string         `json:"user_name,omitempty" db:"user_name"`
	Action     AuditAction     `json:"action" db:"action"`
	EntityType EntityType      `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID       `json:"entity_id" db:"entity_id"`
	OldValues  json.RawMessage `json:"old_values,omitempty" db:"old_values"`
	NewValues  json.RawMessage `json:"new_values,omitempty" db:"new_values"`
	IPAddress  *string         `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  *string         `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type AuditAction string

const (
	AuditCreate          AuditAction = "create"
	AuditUpdate          AuditAction = "update"
	AuditDelete          AuditAction = "delete"
	AuditSubmit          AuditAction = "submit"
	AuditApprove         AuditAction = "approve"
	AuditReject          AuditAction = "reject"
	AuditReturn          AuditAction = "return"
	AuditPublish         AuditAction = "publish"
	AuditCourtSubmission AuditAction = "court_submission"
	AuditUpload          AuditAction = "upload"
	AuditLogin           AuditAction = "login"
	AuditLogout          AuditAction = "logout"
)

type CreateAuditLogInput struct {
	UserID     uuid.UUID
	Action     AuditAction
	EntityType EntityType
	EntityID   uuid.UUID
	OldValues  interface{}
	NewValues  interface{}
	IPAddress  *string
	UserAgent  *string
}

// RequestMeta carries the client details recorded with audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
