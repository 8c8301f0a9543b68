package news

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/mocks"
	"github.com/guudweb/judicial-backend/internal/pkg/i18n"
	"github.com/guudweb/judicial-backend/internal/service/approver"
	"github.com/guudweb/judicial-backend/internal/service/media"
)

func TestMain(m *testing.M) {
	if err := i18n.LoadDefault(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var publishedAt = time.Date(2026, time.May, 4, 9, 30, 0, 0, time.UTC)

type fixture struct {
	svc      *service
	store    *mocks.Store
	notifier *mocks.NotificationService
	audit    *mocks.AuditService
	stats    *mocks.DashboardService
	storage  *mocks.MediaService

	technician domain.Actor
	director   domain.Actor
	president  domain.Actor
	judge      domain.Actor
	citizen    domain.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    mocks.NewStore(),
		notifier: new(mocks.NotificationService),
		audit:    new(mocks.AuditService),
		stats:    new(mocks.DashboardService),
		storage:  new(mocks.MediaService),
	}

	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(&domain.Notification{ID: uuid.New()}, nil).Maybe()
	f.audit.On("Record", mock.Anything, mock.Anything).Maybe()
	f.stats.On("Invalidate", mock.Anything).Maybe()

	dept := uuid.New()
	f.technician = f.addUser(domain.RolePressTechnician, nil, "Rosa Nchama")
	f.director = f.addUser(domain.RolePressDirector, nil, "Juan Ela")
	f.president = f.addUser(domain.RoleCouncilPresident, nil, "Teresa Abeso")
	f.judge = f.addUser(domain.RoleJudge, &dept, "Ana Obiang")
	f.citizen = f.addUser(domain.RoleCitizen, nil, "Vecino")

	f.svc = NewService(
		f.store,
		f.store.News(),
		f.store.NewsFlow(),
		approver.NewResolver(f.store.Users()),
		f.notifier,
		f.audit,
		f.stats,
		f.storage,
		"es",
	).(*service)
	f.svc.now = func() time.Time { return publishedAt }

	return f
}

func (f *fixture) addUser(role domain.Role, dept *uuid.UUID, name string) domain.Actor {
	u := f.store.AddUser(domain.User{
		Email:        strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.org",
		FullName:     name,
		Role:         role,
		DepartmentID: dept,
		IsActive:     true,
	})
	return u.Actor()
}

func (f *fixture) draft(t *testing.T, author domain.Actor, typ domain.NewsType, title string) *domain.News {
	t.Helper()
	n, err := f.svc.Create(context.Background(), author, domain.CreateNewsInput{
		Title:   title,
		Content: "Contenido de prueba",
		Type:    typ,
	}, nil)
	require.NoError(t, err)
	return n
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) *domain.News {
	t.Helper()
	n, err := f.store.News().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func TestScenario_NoticiaNeedsBothApprovals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n := f.draft(t, f.technician, domain.NewsNotice, "Nueva sede judicial")
	assert.Equal(t, domain.NewsDraft, n.Status)
	assert.Equal(t, "nueva-sede-judicial", n.Slug)

	n, err := f.svc.SubmitToDirector(ctx, f.technician, n.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NewsPendingDirectorApproval, n.Status)

	n, err = f.svc.ApproveByDirector(ctx, f.director, n.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.NewsPendingPresidentApproval, n.Status)
	assert.Nil(t, n.PublishedAt)

	n, err = f.svc.ApproveByPresident(ctx, f.president, n.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.NewsPublished, n.Status)
	assert.Equal(t, f.director.ID, *n.ApprovedByDirector)
	assert.Equal(t, f.president.ID, *n.ApprovedByPresident)
	assert.Equal(t, publishedAt, *n.PublishedAt)

	ledger := f.store.NewsLedger(n.ID)
	require.Len(t, ledger, 3)
	assert.Equal(t, domain.NewsSubmit, ledger[0].Action)
	assert.Equal(t, f.director.ID, *ledger[0].ToUserID)
	assert.Equal(t, domain.NewsApprove, ledger[1].Action)
	assert.Equal(t, f.president.ID, *ledger[1].ToUserID)
	assert.Equal(t, domain.NewsPublish, ledger[2].Action)
	assert.Nil(t, ledger[2].ToUserID)

	notified := f.notifier.Notified()
	require.Len(t, notified, 5)
	assert.Equal(t, f.director.ID, notified[0].UserID)
	assert.Equal(t, domain.NotifNewsPending, notified[0].Type)
	assert.Equal(t, "Contenido (noticia) \"Nueva sede judicial\" pendiente de su aprobación", notified[0].Message)
	assert.Equal(t, f.president.ID, notified[1].UserID)
	assert.Equal(t, f.technician.ID, notified[2].UserID)
	assert.Equal(t, domain.NotifNewsForwarded, notified[2].Type)
	assert.Equal(t, f.technician.ID, notified[3].UserID)
	assert.Equal(t, domain.NotifNewsPublished, notified[3].Type)
	assert.Equal(t, f.director.ID, notified[4].UserID)

	public, err := f.svc.GetBySlug(ctx, "nueva-sede-judicial")
	require.NoError(t, err)
	assert.Equal(t, n.ID, public.ID)
}

func TestAviso_PublishedByDirectorAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n := f.draft(t, f.technician, domain.NewsAdvisory, "Cierre por festivo")
	_, err := f.svc.SubmitToDirector(ctx, f.technician, n.ID)
	require.NoError(t, err)

	n, err = f.svc.ApproveByDirector(ctx, f.director, n.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.NewsPublished, n.Status)
	assert.Equal(t, f.director.ID, *n.ApprovedByDirector)
	assert.Nil(t, n.ApprovedByPresident)
	assert.Equal(t, publishedAt, *n.PublishedAt)

	ledger := f.store.NewsLedger(n.ID)
	require.Len(t, ledger, 2)
	assert.Equal(t, domain.NewsApproveAndPublish, ledger[1].Action)

	_, err = f.svc.ApproveByPresident(ctx, f.president, n.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestDirectorSubmission(t *testing.T) {
	t.Run("comunicado publishes directly", func(t *testing.T) {
		f := newFixture(t)
		n := f.draft(t, f.director, domain.NewsCommunique, "Comunicado oficial")

		n, err := f.svc.SubmitToDirector(context.Background(), f.director, n.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.NewsPublished, n.Status)
		assert.Equal(t, f.director.ID, *n.ApprovedByDirector)
		ledger := f.store.NewsLedger(n.ID)
		require.Len(t, ledger, 1)
		assert.Equal(t, domain.NewsDirectPublish, ledger[0].Action)
		assert.Empty(t, f.notifier.Notified())
	})

	t.Run("noticia goes straight to the president", func(t *testing.T) {
		f := newFixture(t)
		n := f.draft(t, f.director, domain.NewsNotice, "Memoria anual")

		n, err := f.svc.SubmitToDirector(context.Background(), f.director, n.ID)
		require.NoError(t, err)

		assert.Equal(t, domain.NewsPendingPresidentApproval, n.Status)
		assert.Equal(t, f.director.ID, *n.ApprovedByDirector)
		notified := f.notifier.Notified()
		require.Len(t, notified, 1)
		assert.Equal(t, f.president.ID, notified[0].UserID)
	})
}

func TestSubmit_Guards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.draft(t, f.technician, domain.NewsNotice, "Jornada de puertas abiertas")

	_, err := f.svc.SubmitToDirector(ctx, f.director, n.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.SubmitToDirector(ctx, f.technician, n.ID)
	require.NoError(t, err)

	_, err = f.svc.SubmitToDirector(ctx, f.technician, n.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.ApproveByPresident(ctx, f.president, n.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.svc.ApproveByDirector(ctx, f.technician, n.ID, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSubmit_WithoutDirectorFails(t *testing.T) {
	f := newFixture(t)
	store := mocks.NewStore()
	author := store.AddUser(domain.User{Email: "solo@example.org", FullName: "Solo", Role: domain.RolePressTechnician, IsActive: true}).Actor()
	f.svc.approvers = approver.NewResolver(store.Users())

	n := f.draft(t, author, domain.NewsNotice, "Sin director")
	_, err := f.svc.SubmitToDirector(context.Background(), author, n.ID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.NewsDraft, f.stored(t, n.ID).Status)
	assert.Empty(t, f.store.NewsLedger(n.ID))
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.draft(t, f.technician, domain.NewsNotice, "Balance trimestral")
	_, err := f.svc.SubmitToDirector(ctx, f.technician, n.ID)
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, f.director, n.ID, "  ")
	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Len(t, f.store.NewsLedger(n.ID), 1)

	_, err = f.svc.Reject(ctx, f.president, n.ID, "No procede")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	n, err = f.svc.Reject(ctx, f.director, n.ID, "Faltan datos")
	require.NoError(t, err)
	assert.Equal(t, domain.NewsDraft, n.Status)

	ledger := f.store.NewsLedger(n.ID)
	require.Len(t, ledger, 2)
	assert.Equal(t, domain.NewsReject, ledger[1].Action)
	assert.Equal(t, "Faltan datos", *ledger[1].Comments)
	assert.Equal(t, f.technician.ID, *ledger[1].ToUserID)

	notified := f.notifier.Notified()
	last := notified[len(notified)-1]
	assert.Equal(t, domain.NotifNewsRejected, last.Type)
	assert.Equal(t, "Tu noticia \"Balance trimestral\" ha sido rechazado. Motivo: Faltan datos", last.Message)

	_, err = f.svc.Reject(ctx, f.director, n.ID, "Otra vez")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestTransition_StaleVersionIsConflict(t *testing.T) {
	f := newFixture(t)
	n := f.draft(t, f.technician, domain.NewsAdvisory, "Horario de verano")
	_, err := f.svc.SubmitToDirector(context.Background(), f.technician, n.ID)
	require.NoError(t, err)

	f.store.BeforeSave = func(id uuid.UUID) {
		f.store.BeforeSave = nil
		f.store.BumpNewsVersion(id)
	}

	_, err = f.svc.ApproveByDirector(context.Background(), f.director, n.ID, nil)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.NewsPendingDirectorApproval, f.stored(t, n.ID).Status)
	assert.Len(t, f.store.NewsLedger(n.ID), 1)
}

func TestApproveByDirector_ConcurrentCallsAreConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.draft(t, f.technician, domain.NewsNotice, "Nueva sala de vistas")
	_, err := f.svc.SubmitToDirector(ctx, f.technician, n.ID)
	require.NoError(t, err)

	done := make(chan struct{})
	read := make(chan struct{})
	var once sync.Once
	var loserErr error
	f.store.BeforeSave = func(uuid.UUID) {
		f.store.BeforeSave = nil
		f.store.AfterRead = func(uuid.UUID) { once.Do(func() { close(read) }) }
		go func() {
			defer close(done)
			_, loserErr = f.svc.ApproveByDirector(ctx, f.director, n.ID, nil)
		}()
		<-read
	}

	_, err = f.svc.ApproveByDirector(ctx, f.director, n.ID, nil)
	require.NoError(t, err)
	<-done

	assert.ErrorIs(t, loserErr, domain.ErrConflict)
	assert.Equal(t, domain.NewsPendingPresidentApproval, f.stored(t, n.ID).Status)
	assert.Len(t, f.store.NewsLedger(n.ID), 2)
}

func TestTransition_LedgerFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	n := f.draft(t, f.technician, domain.NewsAdvisory, "Horario de verano")

	f.store.AppendErr = errors.New("disk full")
	_, err := f.svc.SubmitToDirector(context.Background(), f.technician, n.ID)

	require.Error(t, err)
	assert.Equal(t, domain.NewsDraft, f.stored(t, n.ID).Status)
	assert.Empty(t, f.notifier.Notified())
}

func TestCourtSubmission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := domain.CreateNewsInput{Title: "Suspensión de vistas", Content: "Se suspenden las vistas", Type: domain.NewsAdvisory}

	n, err := f.svc.CourtSubmission(ctx, f.judge, input, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.NewsPendingDirectorApproval, n.Status)
	assert.Equal(t, f.judge.ID, n.AuthorID)

	ledger := f.store.NewsLedger(n.ID)
	require.Len(t, ledger, 1)
	assert.Equal(t, domain.NewsCourtSubmission, ledger[0].Action)
	assert.Equal(t, f.director.ID, *ledger[0].ToUserID)

	notified := f.notifier.Notified()
	require.Len(t, notified, 1)
	assert.Equal(t, domain.NotifCourtSubmission, notified[0].Type)
	assert.Equal(t, f.director.ID, notified[0].UserID)

	input.Type = domain.NewsNotice
	_, err = f.svc.CourtSubmission(ctx, f.judge, input, nil)
	assert.ErrorIs(t, err, domain.ErrValidationFailed)

	input.Type = domain.NewsAdvisory
	_, err = f.svc.CourtSubmission(ctx, f.technician, input, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreate(t *testing.T) {
	t.Run("slugs stay unique", func(t *testing.T) {
		f := newFixture(t)
		first := f.draft(t, f.technician, domain.NewsNotice, "Año judicial")
		second := f.draft(t, f.technician, domain.NewsNotice, "Año judicial")

		assert.Equal(t, "ano-judicial", first.Slug)
		assert.Equal(t, "ano-judicial-1", second.Slug)
	})

	t.Run("symbol-only title falls back", func(t *testing.T) {
		f := newFixture(t)
		n := f.draft(t, f.technician, domain.NewsNotice, "¡¿?!")
		assert.Equal(t, "news", n.Slug)
	})

	t.Run("citizens cannot write", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(context.Background(), f.citizen, domain.CreateNewsInput{Title: "x", Content: "y", Type: domain.NewsNotice}, nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("with image", func(t *testing.T) {
		f := newFixture(t)
		image := domain.FileUpload{FileName: "foto.jpg", ContentType: "image/jpeg", Size: 3, Reader: strings.NewReader("jpg")}
		f.storage.On("Put", mock.Anything, media.NewsPrefix, image).Return("news/2026/05/foto.jpg", nil).Once()
		f.storage.On("URL", mock.Anything, "news/2026/05/foto.jpg").Return("https://cdn.example.org/news/2026/05/foto.jpg", nil).Once()

		n, err := f.svc.Create(context.Background(), f.technician, domain.CreateNewsInput{Title: "Con foto", Content: "y", Type: domain.NewsNotice}, &image)

		require.NoError(t, err)
		assert.Equal(t, "news/2026/05/foto.jpg", *n.ImageKey)
		assert.Equal(t, "https://cdn.example.org/news/2026/05/foto.jpg", *n.ImageURL)
		f.storage.AssertExpectations(t)
	})

	t.Run("image upload failure aborts", func(t *testing.T) {
		f := newFixture(t)
		image := domain.FileUpload{FileName: "foto.jpg", ContentType: "image/jpeg", Size: 3, Reader: strings.NewReader("jpg")}
		f.storage.On("Put", mock.Anything, media.NewsPrefix, image).Return("", media.ErrStorageUnavailable)

		_, err := f.svc.Create(context.Background(), f.technician, domain.CreateNewsInput{Title: "Con foto", Content: "y", Type: domain.NewsNotice}, &image)

		assert.ErrorIs(t, err, media.ErrStorageUnavailable)
	})
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.draft(t, f.technician, domain.NewsNotice, "Titular provisional")
	f.draft(t, f.technician, domain.NewsNotice, "Titular definitivo")

	title := "Titular definitivo"
	updated, err := f.svc.Update(ctx, f.technician, n.ID, domain.UpdateNewsInput{Title: &title}, nil)
	require.NoError(t, err)
	assert.Equal(t, "titular-definitivo-1", updated.Slug)

	other := f.addUser(domain.RolePressTechnician, nil, "Otro Tecnico")
	_, err = f.svc.Update(ctx, other, n.ID, domain.UpdateNewsInput{Title: &title}, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	content := "Texto corregido"
	updated, err = f.svc.Update(ctx, f.director, n.ID, domain.UpdateNewsInput{Content: &content}, nil)
	require.NoError(t, err)
	assert.Equal(t, content, updated.Content)

	_, err = f.svc.SubmitToDirector(ctx, f.technician, n.ID)
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, f.technician, n.ID, domain.UpdateNewsInput{Content: &content}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.technician, n.ID), domain.ErrInvalidState)
}

func TestUpdate_ChangingTypeRefreshesStatistics(t *testing.T) {
	f := newFixture(t)
	n := f.draft(t, f.technician, domain.NewsNotice, "Horario de verano")
	invalidated := invalidations(f.stats)

	typ := domain.NewsAdvisory
	updated, err := f.svc.Update(context.Background(), f.technician, n.ID, domain.UpdateNewsInput{Type: &typ}, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.NewsAdvisory, updated.Type)
	assert.Equal(t, invalidated+1, invalidations(f.stats))
}

func invalidations(stats *mocks.DashboardService) int {
	count := 0
	for _, call := range stats.Calls {
		if call.Method == "Invalidate" {
			count++
		}
	}
	return count
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	image := domain.FileUpload{FileName: "cartel.png", ContentType: "image/png", Size: 3, Reader: strings.NewReader("png")}
	f.storage.On("Put", mock.Anything, media.NewsPrefix, image).Return("news/2026/05/cartel.png", nil).Once()
	f.storage.On("URL", mock.Anything, "news/2026/05/cartel.png").Return("https://cdn.example.org/news/2026/05/cartel.png", nil).Once()
	f.storage.On("Remove", mock.Anything, "news/2026/05/cartel.png").Return(errors.New("bucket offline")).Once()

	n, err := f.svc.Create(ctx, f.technician, domain.CreateNewsInput{Title: "Cartel", Content: "y", Type: domain.NewsAdvisory}, &image)
	require.NoError(t, err)

	other := f.addUser(domain.RolePressTechnician, nil, "Otro Tecnico")
	assert.ErrorIs(t, f.svc.Delete(ctx, other, n.ID), domain.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, f.technician, n.ID))

	gone, err := f.store.News().GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
	f.storage.AssertExpectations(t)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.technician, n.ID), domain.ErrNotFound)
}

func TestVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	n := f.draft(t, f.technician, domain.NewsNotice, "Borrador interno")
	mine, err := f.svc.CourtSubmission(ctx, f.judge, domain.CreateNewsInput{Title: "Aviso del juzgado", Content: "z", Type: domain.NewsAdvisory}, nil)
	require.NoError(t, err)

	_, err = f.svc.GetByID(ctx, f.citizen, n.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.GetBySlug(ctx, n.Slug)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	page, err := f.svc.List(ctx, f.judge, domain.NewsFilter{}, domain.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.ID, page.Data[0].ID)

	page, err = f.svc.List(ctx, f.director, domain.NewsFilter{}, domain.PaginationParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.Total)

	page, err = f.svc.ListPublished(ctx, domain.NewsFilter{}, domain.PaginationParams{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}
