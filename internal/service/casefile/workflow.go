package casefile

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/pkg/i18n"
	"github.com/guudweb/judicial-backend/internal/pkg/rbac"
)

// change describes what a committed transition has to announce.
type change struct {
	before    domain.CaseFile
	audit     domain.AuditAction
	recipient uuid.UUID
	notif     domain.NotificationType
	comments  *string
}

func (s *service) Submit(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.CaseFile, error) {
	var c change
	cf, err := s.mutate(ctx, id, func(ctx context.Context, cf *domain.CaseFile) (*domain.CaseFileTransition, error) {
		if !cf.IsEditable() || cf.CurrentLevel != domain.LevelJudge {
			return nil, domain.InvalidState("case file %s cannot be submitted from status %s", cf.CaseNumber, cf.Status)
		}
		if !cf.IsAssignedTo(actor.ID) || !rbac.Allows(actor.Role, rbac.CaseFilesSubmit) {
			return nil, domain.Forbidden("only the assigned judge can submit this case file")
		}

		president, err := s.approvers.AppealsPresident(ctx, cf.DepartmentID)
		if err != nil {
			return nil, err
		}

		c = change{before: *cf, audit: domain.AuditSubmit, recipient: president.ID, notif: domain.NotifCaseFileAssigned, comments: comments}
		cf.Status = domain.CaseFilePendingApproval
		cf.CurrentLevel = domain.LevelAppealsPresident
		cf.AssignedTo = &president.ID

		return &domain.CaseFileTransition{
			FromUserID: actor.ID,
			ToUserID:   president.ID,
			Action:     domain.ApprovalSubmit,
			Comments:   comments,
			FromLevel:  domain.LevelJudge,
			ToLevel:    domain.LevelAppealsPresident,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, actor, cf, c)
	return cf, nil
}

func (s *service) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.CaseFile, error) {
	var c change
	cf, err := s.mutate(ctx, id, func(ctx context.Context, cf *domain.CaseFile) (*domain.CaseFileTransition, error) {
		if !cf.AwaitingReview() {
			return nil, domain.InvalidState("case file %s is not pending approval", cf.CaseNumber)
		}

		c = change{before: *cf, audit: domain.AuditApprove, comments: comments}
		entry := &domain.CaseFileTransition{
			FromUserID: actor.ID,
			Action:     domain.ApprovalApprove,
			Comments:   comments,
			FromLevel:  cf.CurrentLevel,
		}

		switch cf.CurrentLevel {
		case domain.LevelAppealsPresident:
			if !cf.IsAssignedTo(actor.ID) || !rbac.Allows(actor.Role, rbac.CaseFilesApproveAudiencia) {
				return nil, domain.Forbidden("you cannot approve this case file at its current level")
			}

			secretary, err := s.approvers.SecretaryGeneral(ctx)
			if err != nil {
				return nil, err
			}

			cf.Status = domain.CaseFilePendingApproval
			cf.CurrentLevel = domain.LevelSecretaryGeneral
			cf.AssignedTo = &secretary.ID

			entry.ToUserID = secretary.ID
			entry.ToLevel = domain.LevelSecretaryGeneral
			c.recipient = secretary.ID
			c.notif = domain.NotifCaseFileAssigned

		case domain.LevelSecretaryGeneral:
			if !cf.IsAssignedTo(actor.ID) || !rbac.Allows(actor.Role, rbac.CaseFilesApproveFinal) {
				return nil, domain.Forbidden("you cannot approve this case file at its current level")
			}

			cf.Status = domain.CaseFileApproved
			cf.AssignedTo = nil

			// The final approval has no next holder; the row points back at the approver.
			entry.ToUserID = actor.ID
			entry.ToLevel = domain.LevelSecretaryGeneral
			c.recipient = cf.CreatedBy
			c.notif = domain.NotifCaseFileApproved

		default:
			return nil, domain.InvalidState("case file %s cannot be approved at level %s", cf.CaseNumber, cf.CurrentLevel)
		}

		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, actor, cf, c)
	return cf, nil
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, comments string) (*domain.CaseFile, error) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return nil, domain.ValidationFailed("comments are required to reject a case file")
	}

	var c change
	cf, err := s.mutate(ctx, id, func(ctx context.Context, cf *domain.CaseFile) (*domain.CaseFileTransition, error) {
		if !cf.AwaitingReview() {
			return nil, domain.InvalidState("case file %s is not pending approval", cf.CaseNumber)
		}
		if !cf.IsAssignedTo(actor.ID) {
			return nil, domain.Forbidden("only the current reviewer can reject this case file")
		}

		c = change{before: *cf, audit: domain.AuditReject, recipient: cf.CreatedBy, notif: domain.NotifCaseFileRejected, comments: &comments}
		fromLevel := cf.CurrentLevel
		creator := cf.CreatedBy

		cf.Status = domain.CaseFileRejected
		cf.CurrentLevel = domain.LevelJudge
		cf.AssignedTo = &creator

		return &domain.CaseFileTransition{
			FromUserID: actor.ID,
			ToUserID:   creator,
			Action:     domain.ApprovalReject,
			Comments:   &comments,
			FromLevel:  fromLevel,
			ToLevel:    domain.LevelJudge,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, actor, cf, c)
	return cf, nil
}

func (s *service) Return(ctx context.Context, actor domain.Actor, id uuid.UUID, comments string) (*domain.CaseFile, error) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return nil, domain.ValidationFailed("comments are required to return a case file")
	}

	var c change
	cf, err := s.mutate(ctx, id, func(ctx context.Context, cf *domain.CaseFile) (*domain.CaseFileTransition, error) {
		if !cf.AwaitingReview() {
			return nil, domain.InvalidState("case file %s is not pending approval", cf.CaseNumber)
		}
		if !cf.IsAssignedTo(actor.ID) {
			return nil, domain.Forbidden("only the current reviewer can return this case file")
		}

		fromLevel := cf.CurrentLevel
		toLevel := domain.LevelJudge
		assignee := cf.CreatedBy

		if fromLevel == domain.LevelSecretaryGeneral {
			level := domain.LevelSecretaryGeneral
			forwarded, err := s.flowRepo.FindLatestMatching(ctx, cf.ID, domain.TransitionMatch{
				ToLevel: &level,
				Actions: []domain.ApprovalAction{domain.ApprovalSubmit, domain.ApprovalApprove},
			})
			if err != nil {
				return nil, err
			}
			if forwarded == nil {
				return nil, domain.NotFound("no appeals president found in the approval history of case file %s", cf.CaseNumber)
			}
			toLevel = domain.LevelAppealsPresident
			assignee = forwarded.FromUserID
		}

		c = change{before: *cf, audit: domain.AuditReturn, recipient: assignee, notif: domain.NotifCaseFileReturned, comments: &comments}
		cf.Status = domain.CaseFileDraft
		cf.CurrentLevel = toLevel
		cf.AssignedTo = &assignee

		return &domain.CaseFileTransition{
			FromUserID: actor.ID,
			ToUserID:   assignee,
			Action:     domain.ApprovalReturn,
			Comments:   &comments,
			FromLevel:  fromLevel,
			ToLevel:    toLevel,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, actor, cf, c)
	return cf, nil
}

// announce runs the side effects of a committed transition. None of them
// can fail the transition.
func (s *service) announce(ctx context.Context, actor domain.Actor, cf *domain.CaseFile, c change) {
	input := domain.NotifyInput{
		UserID:     c.recipient,
		Type:       c.notif,
		Title:      i18n.Translate(s.locale, "notif."+string(c.notif)+".title"),
		Message:    i18n.Translatef(s.locale, "notif."+string(c.notif)+".message", cf.CaseNumber),
		EntityType: domain.EntityCaseFile,
		EntityID:   cf.ID,
		Metadata: domain.NotificationMetadata{
			CaseFile:  cf.Snapshot(),
			Comments:  c.comments,
			ActorName: actor.FullName,
		},
	}
	if _, err := s.notifier.Notify(ctx, input); err != nil {
		log.Printf("failed to notify %s about case file %s: %v", c.recipient, cf.ID, err)
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     c.audit,
		EntityType: domain.EntityCaseFile,
		EntityID:   cf.ID,
		OldValues:  workflowState(&c.before),
		NewValues:  workflowState(cf),
	})

	s.stats.Invalidate(ctx)
}

func workflowState(cf *domain.CaseFile) map[string]interface{} {
	return map[string]interface{}{
		"status":        cf.Status,
		"current_level": cf.CurrentLevel,
		"assigned_to":   cf.AssignedTo,
	}
}
