package email

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/pkg/i18n"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, to, subject, html string) error {
	args := m.Called(ctx, to, subject, html)
	return args.Error(0)
}

func newTestService(t *testing.T, sender Sender) *service {
	t.Helper()
	require.NoError(t, i18n.LoadDefault())

	svc, err := NewService(sender, "https://portal.example.org/", "es")
	require.NoError(t, err)
	return svc.(*service)
}

func notificationWith(t *testing.T, typ domain.NotificationType, meta domain.NotificationMetadata) *domain.Notification {
	t.Helper()
	raw, err := json.Marshal(meta)
	require.NoError(t, err)
	return &domain.Notification{ID: uuid.New(), Type: typ, Metadata: raw}
}

func TestSendNotification_CaseFileRejected(t *testing.T) {
	sender := new(mockSender)
	svc := newTestService(t, sender)

	comments := "Falta la firma del juez"
	cf := &domain.CaseFile{
		ID:           uuid.New(),
		CaseNumber:   "2026-00007",
		Title:        "Recurso de amparo",
		Status:       domain.CaseFileRejected,
		CurrentLevel: domain.LevelJudge,
	}
	n := notificationWith(t, domain.NotifCaseFileRejected, domain.NotificationMetadata{
		CaseFile: cf.Snapshot(),
		Comments: &comments,
	})
	recipient := &domain.User{Email: "juez@example.org", FullName: "Ana Obiang"}

	sender.On("Send", mock.Anything, "juez@example.org", "Expediente rechazado: 2026-00007",
		mock.MatchedBy(func(html string) bool {
			return assert.Contains(t, html, "Estimado/a Ana Obiang,") &&
				assert.Contains(t, html, "Recurso de amparo") &&
				assert.Contains(t, html, "Falta la firma del juez") &&
				assert.Contains(t, html, "Rechazado") &&
				assert.Contains(t, html, "https://portal.example.org/expedientes/"+cf.ID.String()) &&
				assert.Contains(t, html, "#ef4444")
		}),
	).Return(nil).Once()

	require.NoError(t, svc.SendNotification(context.Background(), recipient, n))
	sender.AssertExpectations(t)
}

func TestRender_NewsPendingApproval(t *testing.T) {
	svc := newTestService(t, new(mockSender))

	news := &domain.News{
		ID:     uuid.New(),
		Title:  "Apertura del año judicial",
		Slug:   "apertura-del-ano-judicial",
		Type:   domain.NewsNotice,
		Status: domain.NewsPendingPresidentApproval,
	}
	n := notificationWith(t, domain.NotifNewsPending, domain.NotificationMetadata{News: news.Snapshot()})

	subject, html, err := svc.Render(&domain.User{FullName: "Director"}, n)
	require.NoError(t, err)

	assert.Equal(t, "Nueva noticia para revisar: Apertura del año judicial", subject)
	assert.Contains(t, html, "Pendiente de aprobación Presidencial")
	assert.Contains(t, html, "/noticias/"+news.ID.String())
	assert.NotContains(t, html, "Comentarios")
}

func TestRender_CourtSubmissionSubjectUsesTypeLabel(t *testing.T) {
	svc := newTestService(t, new(mockSender))

	news := &domain.News{ID: uuid.New(), Title: "Cierre", Type: domain.NewsAdvisory, Status: domain.NewsPendingDirectorApproval}
	n := notificationWith(t, domain.NotifCourtSubmission, domain.NotificationMetadata{News: news.Snapshot()})

	subject, _, err := svc.Render(&domain.User{FullName: "Director"}, n)
	require.NoError(t, err)
	assert.Equal(t, "Nuevo aviso de juzgado", subject)
}

func TestRender_EscapesUserContent(t *testing.T) {
	svc := newTestService(t, new(mockSender))

	cf := &domain.CaseFile{ID: uuid.New(), CaseNumber: "2026-00001", Title: "<script>alert(1)</script>", Status: domain.CaseFilePendingApproval}
	n := notificationWith(t, domain.NotifCaseFileAssigned, domain.NotificationMetadata{CaseFile: cf.Snapshot()})

	_, html, err := svc.Render(&domain.User{FullName: "X"}, n)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_WithoutSnapshot(t *testing.T) {
	sender := new(mockSender)
	svc := newTestService(t, sender)

	err := svc.SendNotification(context.Background(), &domain.User{}, &domain.Notification{Type: domain.NotifNewsPublished})
	assert.ErrorIs(t, err, ErrNoSnapshot)
	sender.AssertNotCalled(t, "Send")
}
