package handler

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	CaseFile     *CaseFileHandler
	News         *NewsHandler
	Public       *PublicHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Dashboard    *DashboardHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth),
		User:         NewUserHandler(),
		CaseFile:     NewCaseFileHandler(services.CaseFile),
		News:         NewNewsHandler(services.News),
		Public:       NewPublicHandler(services.News),
		Notification: NewNotificationHandler(services.Notification),
		Audit:        NewAuditHandler(services.Audit),
		Dashboard:    NewDashboardHandler(services.CaseFile, services.News, services.Notification),
	}
}

// commentsInput is the body of workflow actions.
type commentsInput struct {
	Comments *string `json:"comments"`
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.PaginationParams{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 0),
	}
	params.Normalize()
	return params
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + name)
	}
	return id, nil
}

// parseComments reads an optional comments body. An empty body is allowed.
func parseComments(c *fiber.Ctx) (*string, error) {
	var input commentsInput
	if len(c.Body()) == 0 {
		return nil, nil
	}
	if err := c.BodyParser(&input); err != nil {
		return nil, middleware.BadRequest("Invalid request body")
	}
	if input.Comments != nil && strings.TrimSpace(*input.Comments) == "" {
		return nil, nil
	}
	return input.Comments, nil
}

// openUpload opens the named multipart file. It returns nil when the field
// is absent; the caller closes the returned file.
func openUpload(c *fiber.Ctx, field string) (*domain.FileUpload, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, middleware.BadRequest("Failed to read file")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &domain.FileUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Reader:      file,
	}, file, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// withRequiredComments adapts an action whose comments are mandatory to the
// optional-comments shape. The service rejects a missing value.
func withRequiredComments[T any](fn func(context.Context, domain.Actor, uuid.UUID, string) (T, error)) func(context.Context, domain.Actor, uuid.UUID, *string) (T, error) {
	return func(ctx context.Context, actor domain.Actor, id uuid.UUID, comments *string) (T, error) {
		var value string
		if comments != nil {
			value = *comments
		}
		return fn(ctx, actor, id, value)
	}
}
