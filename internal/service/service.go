package service

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"github.com/guudweb/judicial-backend/internal/config"
	"github.com/guudweb/judicial-backend/internal/repository"
	"github.com/guudweb/judicial-backend/internal/service/approver"
	"github.com/guudweb/judicial-backend/internal/service/audit"
	"github.com/guudweb/judicial-backend/internal/service/auth"
	"github.com/guudweb/judicial-backend/internal/service/casefile"
	"github.com/guudweb/judicial-backend/internal/service/dashboard"
	"github.com/guudweb/judicial-backend/internal/service/email"
	"github.com/guudweb/judicial-backend/internal/service/media"
	"github.com/guudweb/judicial-backend/internal/service/news"
	"github.com/guudweb/judicial-backend/internal/service/notification"
)

type Services struct {
	Auth         auth.Service
	CaseFile     casefile.Service
	News         news.Service
	Notification notification.Service
	Audit        audit.Service
	Dashboard    dashboard.Service
	Media        media.Service

	// Dispatcher delivers notification emails in the background. Callers
	// start it before serving and close it on shutdown.
	Dispatcher *notification.Dispatcher
}

func NewServices(repos *repository.Repositories, redis *redis.Client, minioClient *minio.Client, cfg *config.Config) (*Services, error) {
	mailer, err := email.NewService(email.NewResendSender(cfg), cfg.FrontendURL, cfg.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	dispatcher := notification.NewDispatcher(repos.User, mailer, cfg.EmailWorkers, cfg.EmailQueueSize)
	notificationService := notification.NewService(repos.Notification, dispatcher)

	auditService := audit.NewService(repos.AuditLog)
	dashboardService := dashboard.NewService(repos.CaseFile, repos.News, redis, cfg.StatsCacheTTL)
	mediaService := media.NewService(minioClient, cfg)
	approvers := approver.NewResolver(repos.User)

	caseFileService := casefile.NewService(
		repos.Tx,
		repos.CaseFile,
		repos.CaseFileFlow,
		repos.Document,
		approvers,
		notificationService,
		auditService,
		dashboardService,
		mediaService,
		cfg.DefaultLocale,
	)

	newsService := news.NewService(
		repos.Tx,
		repos.News,
		repos.NewsFlow,
		approvers,
		notificationService,
		auditService,
		dashboardService,
		mediaService,
		cfg.DefaultLocale,
	)

	return &Services{
		Auth:         auth.NewService(repos.User, repos.Session, auditService, cfg),
		CaseFile:     caseFileService,
		News:         newsService,
		Notification: notificationService,
		Audit:        auditService,
		Dashboard:    dashboardService,
		Media:        mediaService,
		Dispatcher:   dispatcher,
	}, nil
}
