package audit

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/repository"
)

type Service interface {
	// Record writes an audit entry. Failures are logged and swallowed.
	Record(ctx context.Context, input domain.CreateAuditLogInput)
	GetRecentActivities(ctx context.Context, limit int) ([]domain.AuditLog, error)
	ListForEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, params domain.PaginationParams) (domain.Page[domain.AuditLog], error)
}

type metaKey struct{}

// WithRequestMeta attaches the client address and user agent to ctx.
func WithRequestMeta(ctx context.Context, meta domain.RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) (domain.RequestMeta, bool) {
	meta, ok := ctx.Value(metaKey{}).(domain.RequestMeta)
	return meta, ok
}

type service struct {
	auditRepo repository.AuditLogRepository
}

func NewService(auditRepo repository.AuditLogRepository) Service {
	return &service{
		auditRepo: auditRepo,
	}
}

func (s *service) Record(ctx context.Context, input domain.CreateAuditLogInput) {
	entry := &domain.AuditLog{
		ID:         uuid.New(),
		UserID:     input.UserID,
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
	}

	if meta, ok := RequestMetaFrom(ctx); ok {
		if entry.IPAddress == nil && meta.IPAddress != "" {
			entry.IPAddress = &meta.IPAddress
		}
		if entry.UserAgent == nil && meta.UserAgent != "" {
			entry.UserAgent = &meta.UserAgent
		}
	}

	var err error
	if entry.OldValues, err = encode(input.OldValues); err != nil {
		log.Printf("failed to encode audit old values for %s %s: %v", input.EntityType, input.EntityID, err)
	}
	if entry.NewValues, err = encode(input.NewValues); err != nil {
		log.Printf("failed to encode audit new values for %s %s: %v", input.EntityType, input.EntityID, err)
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("failed to write audit log %s on %s %s: %v", input.Action, input.EntityType, input.EntityID, err)
	}
}

func (s *service) GetRecentActivities(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	params := domain.PaginationParams{
		Page:  1,
		Limit: limit,
	}
	params.Normalize()

	logs, _, err := s.auditRepo.List(ctx, params)
	return logs, err
}

func (s *service) ListForEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID, params domain.PaginationParams) (domain.Page[domain.AuditLog], error) {
	params.Normalize()

	logs, total, err := s.auditRepo.ListByEntity(ctx, entityType, entityID, params)
	if err != nil {
		return domain.Page[domain.AuditLog]{}, err
	}
	return domain.NewPage(logs, params, total), nil
}

func encode(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
