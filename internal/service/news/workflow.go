package news

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/pkg/i18n"
	"github.com/guudweb/judicial-backend/internal/pkg/rbac"
)

// notice is one notification to send once a transition has committed.
type notice struct {
	recipient uuid.UUID
	typ       domain.NotificationType
	key       string
	args      []interface{}
}

func (s *service) SubmitToDirector(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.News, error) {
	var (
		fromStatus domain.NewsStatus
		notices    []notice
	)
	n, err := s.mutate(ctx, id, func(ctx context.Context, n *domain.News) (*domain.NewsTransition, error) {
		if n.Status != domain.NewsDraft {
			return nil, domain.InvalidState("only draft news can be submitted")
		}
		if n.AuthorID != actor.ID {
			return nil, domain.Forbidden("only the author can submit this news item")
		}

		fromStatus = n.Status
		entry := &domain.NewsTransition{
			FromUserID: actor.ID,
			Action:     domain.NewsSubmit,
			FromStatus: n.Status,
		}

		switch {
		case actor.Role == domain.RolePressDirector && n.Type.DirectorOnly():
			now := s.now()
			n.Status = domain.NewsPublished
			n.ApprovedByDirector = &actor.ID
			n.PublishedAt = &now
			entry.Action = domain.NewsDirectPublish

		case actor.Role == domain.RolePressDirector:
			president, err := s.approvers.CouncilPresident(ctx)
			if err != nil {
				return nil, err
			}
			n.Status = domain.NewsPendingPresidentApproval
			n.ApprovedByDirector = &actor.ID
			entry.ToUserID = &president.ID
			notices = append(notices, s.pendingNotice(president.ID, n))

		default:
			director, err := s.approvers.PressDirector(ctx)
			if err != nil {
				return nil, err
			}
			n.Status = domain.NewsPendingDirectorApproval
			entry.ToUserID = &director.ID
			notices = append(notices, s.pendingNotice(director.ID, n))
		}

		entry.ToStatus = n.Status
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	auditAction := domain.AuditSubmit
	if n.Status == domain.NewsPublished {
		auditAction = domain.AuditPublish
	}
	s.announce(ctx, actor, n, fromStatus, auditAction, nil, notices)
	return n, nil
}

func (s *service) ApproveByDirector(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.News, error) {
	var notices []notice
	n, err := s.mutate(ctx, id, func(ctx context.Context, n *domain.News) (*domain.NewsTransition, error) {
		if n.Status != domain.NewsPendingDirectorApproval {
			return nil, domain.InvalidState("news item is not pending director approval")
		}
		if !rbac.Allows(actor.Role, rbac.NewsApproveDirector) {
			return nil, domain.Forbidden("only the press director can approve at this level")
		}

		entry := &domain.NewsTransition{
			FromUserID: actor.ID,
			Comments:   comments,
			FromStatus: n.Status,
		}
		n.ApprovedByDirector = &actor.ID

		if n.Type.DirectorOnly() {
			now := s.now()
			n.Status = domain.NewsPublished
			n.PublishedAt = &now
			entry.Action = domain.NewsApproveAndPublish
			notices = append(notices, s.publishedNotice(n))
		} else {
			president, err := s.approvers.CouncilPresident(ctx)
			if err != nil {
				return nil, err
			}
			n.Status = domain.NewsPendingPresidentApproval
			entry.Action = domain.NewsApprove
			entry.ToUserID = &president.ID
			notices = append(notices, s.pendingNotice(president.ID, n))
			if n.AuthorID != actor.ID {
				notices = append(notices, notice{
					recipient: n.AuthorID,
					typ:       domain.NotifNewsForwarded,
					key:       "notif.news_forwarded",
					args:      []interface{}{s.typeLabel(n.Type), n.Title},
				})
			}
		}

		entry.ToStatus = n.Status
		return entry, nil
	})
	if err != nil {
		return nil, err
	}

	auditAction := domain.AuditApprove
	if n.Status == domain.NewsPublished {
		auditAction = domain.AuditPublish
	}
	s.announce(ctx, actor, n, domain.NewsPendingDirectorApproval, auditAction, comments, notices)
	return n, nil
}

func (s *service) ApproveByPresident(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (*domain.News, error) {
	var notices []notice
	n, err := s.mutate(ctx, id, func(ctx context.Context, n *domain.News) (*domain.NewsTransition, error) {
		if n.Status != domain.NewsPendingPresidentApproval {
			return nil, domain.InvalidState("news item is not pending presidential approval")
		}
		if !rbac.Allows(actor.Role, rbac.NewsApprovePresident) {
			return nil, domain.Forbidden("only the council president can approve at this level")
		}
		if n.Type != domain.NewsNotice {
			return nil, domain.InvalidState("only noticias require presidential approval")
		}

		now := s.now()
		n.Status = domain.NewsPublished
		n.ApprovedByPresident = &actor.ID
		n.PublishedAt = &now

		notices = append(notices, s.publishedNotice(n))
		if d := n.ApprovedByDirector; d != nil && *d != n.AuthorID {
			notices = append(notices, notice{
				recipient: *d,
				typ:       domain.NotifNewsPublished,
				key:       "notif.news_published_president",
				args:      []interface{}{n.Title},
			})
		}

		return &domain.NewsTransition{
			FromUserID: actor.ID,
			Action:     domain.NewsPublish,
			Comments:   comments,
			FromStatus: domain.NewsPendingPresidentApproval,
			ToStatus:   domain.NewsPublished,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, actor, n, domain.NewsPendingPresidentApproval, domain.AuditPublish, comments, notices)
	return n, nil
}

func (s *service) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, comments string) (*domain.News, error) {
	comments = strings.TrimSpace(comments)
	if comments == "" {
		return nil, domain.ValidationFailed("comments are required to reject a news item")
	}

	var (
		fromStatus domain.NewsStatus
		notices    []notice
	)
	n, err := s.mutate(ctx, id, func(ctx context.Context, n *domain.News) (*domain.NewsTransition, error) {
		var action rbac.Action
		switch n.Status {
		case domain.NewsPendingDirectorApproval:
			action = rbac.NewsApproveDirector
		case domain.NewsPendingPresidentApproval:
			action = rbac.NewsApprovePresident
		default:
			return nil, domain.InvalidState("news item is not pending approval")
		}
		if !rbac.Allows(actor.Role, action) {
			return nil, domain.Forbidden("you cannot reject this news item at its current stage")
		}

		fromStatus = n.Status
		n.Status = domain.NewsDraft
		author := n.AuthorID

		notices = append(notices, notice{
			recipient: author,
			typ:       domain.NotifNewsRejected,
			key:       "notif.news_rejected",
			args:      []interface{}{s.typeLabel(n.Type), n.Title, comments},
		})

		return &domain.NewsTransition{
			FromUserID: actor.ID,
			ToUserID:   &author,
			Action:     domain.NewsReject,
			Comments:   &comments,
			FromStatus: fromStatus,
			ToStatus:   domain.NewsDraft,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.announce(ctx, actor, n, fromStatus, domain.AuditReject, &comments, notices)
	return n, nil
}

func (s *service) CourtSubmission(ctx context.Context, actor domain.Actor, input domain.CreateNewsInput, image *domain.FileUpload) (*domain.News, error) {
	if !rbac.Allows(actor.Role, rbac.NewsCourtSubmission) {
		return nil, domain.Forbidden("only courts can submit advisories and communiques")
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if !input.Type.DirectorOnly() {
		return nil, domain.ValidationFailed("courts can only submit avisos or comunicados")
	}

	director, err := s.approvers.PressDirector(ctx)
	if err != nil {
		return nil, err
	}

	entry := &domain.NewsTransition{
		FromUserID: actor.ID,
		ToUserID:   &director.ID,
		Action:     domain.NewsCourtSubmission,
		FromStatus: domain.NewsDraft,
		ToStatus:   domain.NewsPendingDirectorApproval,
	}
	n, err := s.insert(ctx, actor, input, image, domain.NewsPendingDirectorApproval, entry)
	if err != nil {
		return nil, err
	}

	typeLabel := s.typeLabel(n.Type)
	s.notify(ctx, actor, n, nil, notice{recipient: director.ID, typ: domain.NotifCourtSubmission},
		i18n.Translatef(s.locale, "notif.court_submission.title", typeLabel),
		i18n.Translatef(s.locale, "notif.court_submission.message", actor.FullName, typeLabel))

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     domain.AuditCourtSubmission,
		EntityType: domain.EntityNews,
		EntityID:   n.ID,
		NewValues:  map[string]interface{}{"title": n.Title, "type": n.Type, "status": n.Status},
	})
	s.stats.Invalidate(ctx)

	return n, nil
}

func (s *service) pendingNotice(recipient uuid.UUID, n *domain.News) notice {
	return notice{
		recipient: recipient,
		typ:       domain.NotifNewsPending,
		key:       "notif.news_pending_approval",
		args:      []interface{}{s.typeLabel(n.Type), n.Title},
	}
}

func (s *service) publishedNotice(n *domain.News) notice {
	return notice{
		recipient: n.AuthorID,
		typ:       domain.NotifNewsPublished,
		key:       "notif.news_published",
		args:      []interface{}{s.typeLabel(n.Type), n.Title},
	}
}

func (s *service) typeLabel(t domain.NewsType) string {
	return i18n.Translate(s.locale, "news_type."+string(t))
}

// announce runs the side effects of a committed transition. None of them
// can fail the transition.
func (s *service) announce(ctx context.Context, actor domain.Actor, n *domain.News, fromStatus domain.NewsStatus, action domain.AuditAction, comments *string, notices []notice) {
	for _, nt := range notices {
		s.notify(ctx, actor, n, comments, nt,
			i18n.Translate(s.locale, nt.key+".title"),
			i18n.Translatef(s.locale, nt.key+".message", nt.args...))
	}

	s.auditSvc.Record(ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     action,
		EntityType: domain.EntityNews,
		EntityID:   n.ID,
		OldValues:  map[string]interface{}{"status": fromStatus},
		NewValues:  map[string]interface{}{"status": n.Status, "published_at": n.PublishedAt},
	})

	s.stats.Invalidate(ctx)
}

func (s *service) notify(ctx context.Context, actor domain.Actor, n *domain.News, comments *string, nt notice, title, message string) {
	input := domain.NotifyInput{
		UserID:     nt.recipient,
		Type:       nt.typ,
		Title:      title,
		Message:    message,
		EntityType: domain.EntityNews,
		EntityID:   n.ID,
		Metadata: domain.NotificationMetadata{
			News:      n.Snapshot(),
			Comments:  comments,
			ActorName: actor.FullName,
		},
	}
	if _, err := s.notifier.Notify(ctx, input); err != nil {
		log.Printf("failed to notify %s about news %s: %v", nt.recipient, n.ID, err)
	}
}
