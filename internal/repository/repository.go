package repository

import (
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Tx           Transactor
	User         UserRepository
	CaseFile     CaseFileRepository
	CaseFileFlow CaseFileFlowRepository
	News         NewsRepository
	NewsFlow     NewsFlowRepository
	Document     DocumentRepository
	AuditLog     AuditLogRepository
	Notification NotificationRepository
	Session      SessionRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Tx:           NewTransactor(db),
		User:         NewUserRepository(db),
		CaseFile:     NewCaseFileRepository(db),
		CaseFileFlow: NewCaseFileFlowRepository(db),
		News:         NewNewsRepository(db),
		NewsFlow:     NewNewsFlowRepository(db),
		Document:     NewDocumentRepository(db),
		AuditLog:     NewAuditLogRepository(db),
		Notification: NewNotificationRepository(db),
		Session:      NewSessionRepository(db),
	}
}
