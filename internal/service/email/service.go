package email

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v3"

	"github.com/guudweb/judicial-backend/internal/config"
	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/pkg/i18n"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrNoSnapshot = errors.New("notification carries no entity snapshot")

// Sender delivers one rendered email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type Service interface {
	// SendNotification renders n for recipient and sends it.
	SendNotification(ctx context.Context, recipient *domain.User, n *domain.Notification) error
}

type resendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(cfg *config.Config) Sender {
	return &resendSender{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
	}
}

func (s *resendSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Html:    html,
		Subject: subject,
	}

	_, err := s.client.Emails.Send(params)
	return err
}

type service struct {
	sender      Sender
	caseTmpl    *template.Template
	newsTmpl    *template.Template
	frontendURL string
	locale      string
}

func NewService(sender Sender, frontendURL, locale string) (Service, error) {
	caseTmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/case_file.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse case file email templates: %w", err)
	}
	newsTmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/news.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse news email templates: %w", err)
	}

	return &service{
		sender:      sender,
		caseTmpl:    caseTmpl,
		newsTmpl:    newsTmpl,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		locale:      locale,
	}, nil
}

type labels struct {
	Details      string
	CaseNumber   string
	Title        string
	Status       string
	Comments     string
	CallToAction string
}

type page struct {
	Header       string
	Greeting     string
	Intro        string
	Link         string
	LinkLabel    string
	Color        string
	FooterNotice string
	FooterOwner  string
	Year         int
	Labels       labels

	CaseFile    *domain.CaseFileSnapshot
	News        *domain.NewsSnapshot
	StatusLabel string
	TypeLabel   string
	Comments    string
}

func (s *service) SendNotification(ctx context.Context, recipient *domain.User, n *domain.Notification) error {
	subject, html, err := s.Render(recipient, n)
	if err != nil {
		return err
	}
	return s.sender.Send(ctx, recipient.Email, subject, html)
}

// Render builds the subject and HTML body for n. Exposed for tests.
func (s *service) Render(recipient *domain.User, n *domain.Notification) (string, string, error) {
	var meta domain.NotificationMetadata
	if len(n.Metadata) > 0 {
		if err := json.Unmarshal(n.Metadata, &meta); err != nil {
			return "", "", fmt.Errorf("failed to decode notification metadata: %w", err)
		}
	}

	loc := s.locale
	p := page{
		Greeting:     i18n.Translatef(loc, "email.greeting", recipient.FullName),
		Color:        colorFor(n.Type),
		FooterNotice: i18n.Translate(loc, "email.footer_notice"),
		FooterOwner:  i18n.Translate(loc, "email.footer_owner"),
		Year:         time.Now().Year(),
		Labels: labels{
			Details:      i18n.Translate(loc, "email.case_details"),
			CaseNumber:   i18n.Translate(loc, "email.case_number"),
			Title:        i18n.Translate(loc, "email.title"),
			Status:       i18n.Translate(loc, "email.current_status"),
			Comments:     i18n.Translate(loc, "email.comments"),
			CallToAction: i18n.Translate(loc, "email.call_to_action"),
		},
		CaseFile: meta.CaseFile,
		News:     meta.News,
	}
	if meta.Comments != nil {
		p.Comments = *meta.Comments
	}

	var (
		subject string
		tmpl    *template.Template
	)
	switch {
	case meta.CaseFile != nil:
		tmpl = s.caseTmpl
		p.Header = i18n.Translate(loc, "email.header_case")
		p.Intro = s.pick(loc, "email.intro.", string(n.Type), "expediente_default")
		p.StatusLabel = i18n.Translate(loc, "case_status."+string(meta.CaseFile.Status))
		p.Link = fmt.Sprintf("%s/expedientes/%s", s.frontendURL, meta.CaseFile.ID)
		p.LinkLabel = i18n.Translate(loc, "email.view_case_file")
		subject = fmt.Sprintf(s.pick(loc, "email.subject.", string(n.Type), "expediente_default"), meta.CaseFile.CaseNumber)
	case meta.News != nil:
		tmpl = s.newsTmpl
		p.Header = i18n.Translate(loc, "email.header_news")
		p.Intro = s.pick(loc, "email.intro.", string(n.Type), "news_default")
		p.StatusLabel = i18n.Translate(loc, "news_status."+string(meta.News.Status))
		p.TypeLabel = i18n.Translate(loc, "news_type."+string(meta.News.Type))
		p.Labels.Status = i18n.Translate(loc, "email.status")
		p.Link = fmt.Sprintf("%s/noticias/%s", s.frontendURL, meta.News.ID)
		p.LinkLabel = i18n.Translate(loc, "email.view_news")
		subject = s.newsSubject(loc, n.Type, meta.News, p.TypeLabel)
	default:
		return "", "", ErrNoSnapshot
	}

	var body bytes.Buffer
	if err := tmpl.ExecuteTemplate(&body, "layout", p); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return subject, body.String(), nil
}

func (s *service) pick(loc, prefix, kind, fallback string) string {
	if i18n.Has(loc, prefix+kind) || i18n.Has(i18n.FallbackLocale, prefix+kind) {
		return i18n.Translate(loc, prefix+kind)
	}
	return i18n.Translate(loc, prefix+fallback)
}

func (s *service) newsSubject(loc string, t domain.NotificationType, news *domain.NewsSnapshot, typeLabel string) string {
	switch t {
	case domain.NotifCourtSubmission:
		return i18n.Translatef(loc, "email.subject.court_submission", typeLabel)
	case domain.NotifNewsPending, domain.NotifNewsForwarded, domain.NotifNewsPublished, domain.NotifNewsRejected:
		return i18n.Translatef(loc, "email.subject."+string(t), news.Title)
	default:
		return i18n.Translate(loc, "email.subject.news_default")
	}
}

func colorFor(t domain.NotificationType) string {
	switch t {
	case domain.NotifCaseFileRejected, domain.NotifNewsRejected:
		return "#ef4444"
	case domain.NotifCaseFileReturned:
		return "#f59e0b"
	case domain.NotifCaseFileApproved, domain.NotifNewsPublished:
		return "#10b981"
	default:
		return "#1a5490"
	}
}
