package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/guudweb/judicial-backend/internal/domain"
	"github.com/guudweb/judicial-backend/internal/repository"
)

// Store is an in-memory stand-in for the Postgres repositories used by the
// workflow services. Transactions are serialised and roll back to a snapshot
// when fn fails, which is what row locks and a real transaction give the
// services in production.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	caseFiles map[uuid.UUID]domain.CaseFile
	caseFlow  []domain.CaseFileTransition
	documents map[uuid.UUID]domain.Document
	news      map[uuid.UUID]domain.News
	newsFlow  []domain.NewsTransition
	users     map[uuid.UUID]domain.User
	sequences map[int]int64
	seq       int64

	// BeforeSave runs before every versioned save, outside the data lock.
	// Tests use it to play a concurrent writer.
	BeforeSave func(id uuid.UUID)
	// AfterRead runs after every case-file or news read by id, outside the
	// data lock.
	AfterRead func(id uuid.UUID)
	// AppendErr, when set, fails every ledger append.
	AppendErr error
	// TakenCaseNumbers makes Create fail with a duplicate key for these numbers.
	TakenCaseNumbers map[string]bool
}

type txMarker struct{}

func NewStore() *Store {
	return &Store{
		caseFiles:        make(map[uuid.UUID]domain.CaseFile),
		documents:        make(map[uuid.UUID]domain.Document),
		news:             make(map[uuid.UUID]domain.News),
		users:            make(map[uuid.UUID]domain.User),
		sequences:        make(map[int]int64),
		TakenCaseNumbers: make(map[string]bool),
	}
}

type snapshot struct {
	caseFiles map[uuid.UUID]domain.CaseFile
	caseFlow  []domain.CaseFileTransition
	documents map[uuid.UUID]domain.Document
	news      map[uuid.UUID]domain.News
	newsFlow  []domain.NewsTransition
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		caseFiles: make(map[uuid.UUID]domain.CaseFile, len(s.caseFiles)),
		caseFlow:  append([]domain.CaseFileTransition(nil), s.caseFlow...),
		documents: make(map[uuid.UUID]domain.Document, len(s.documents)),
		news:      make(map[uuid.UUID]domain.News, len(s.news)),
		newsFlow:  append([]domain.NewsTransition(nil), s.newsFlow...),
	}
	for k, v := range s.caseFiles {
		snap.caseFiles[k] = v
	}
	for k, v := range s.documents {
		snap.documents[k] = v
	}
	for k, v := range s.news {
		snap.news[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.caseFiles = snap.caseFiles
	s.caseFlow = snap.caseFlow
	s.documents = snap.documents
	s.news = snap.news
	s.newsFlow = snap.newsFlow
}

// AddUser seeds the user directory.
func (s *Store) AddUser(u domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().Add(time.Duration(len(s.users)) * time.Millisecond)
	}
	s.users[u.ID] = u
	return &u
}

// BumpCaseFileVersion simulates a write committed by another request.
func (s *Store) BumpCaseFileVersion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cf := s.caseFiles[id]
	cf.Version++
	s.caseFiles[id] = cf
}

func (s *Store) BumpNewsVersion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.news[id]
	n.Version++
	s.news[id] = n
}

func (s *Store) CaseFileLedger(id uuid.UUID) []domain.CaseFileTransition {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []domain.CaseFileTransition
	for _, t := range s.caseFlow {
		if t.CaseFileID == id {
			rows = append(rows, t)
		}
	}
	return rows
}

func (s *Store) NewsLedger(id uuid.UUID) []domain.NewsTransition {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows []domain.NewsTransition
	for _, t := range s.newsFlow {
		if t.NewsID == id {
			rows = append(rows, t)
		}
	}
	return rows
}

func (s *Store) Users() repository.UserRepository               { return userStore{s} }
func (s *Store) CaseFiles() repository.CaseFileRepository       { return caseFileStore{s} }
func (s *Store) CaseFileFlow() repository.CaseFileFlowRepository { return caseFlowStore{s} }
func (s *Store) Documents() repository.DocumentRepository       { return documentStore{s} }
func (s *Store) News() repository.NewsRepository                { return newsStore{s} }
func (s *Store) NewsFlow() repository.NewsFlowRepository        { return newsFlowStore{s} }

type userStore struct{ s *Store }

func (r userStore) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateKey
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r userStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r userStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r userStore) FindByRole(ctx context.Context, role domain.Role) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Role == role })
}

func (r userStore) FindByRoleAndDepartment(ctx context.Context, role domain.Role, departmentID uuid.UUID) (*domain.User, error) {
	return r.find(func(u domain.User) bool {
		return u.Role == role && u.DepartmentID != nil && *u.DepartmentID == departmentID
	})
}

func (r userStore) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var found *domain.User
	for _, u := range r.s.users {
		if !u.IsActive || !match(u) {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) {
			u := u
			found = &u
		}
	}
	return found, nil
}

func (r userStore) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
		r.s.users[id] = u
	}
	return nil
}

type caseFileStore struct{ s *Store }

func (r caseFileStore) NextSequence(ctx context.Context, year int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sequences[year]++
	return r.s.sequences[year], nil
}

func (r caseFileStore) Create(ctx context.Context, cf *domain.CaseFile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.TakenCaseNumbers[cf.CaseNumber] {
		return repository.ErrDuplicateKey
	}
	for _, existing := range r.s.caseFiles {
		if existing.CaseNumber == cf.CaseNumber {
			return repository.ErrDuplicateKey
		}
	}
	cf.CreatedAt = time.Now()
	cf.UpdatedAt = cf.CreatedAt
	r.s.caseFiles[cf.ID] = *cf
	return nil
}

func (r caseFileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.CaseFile, error) {
	r.s.mu.Lock()
	cf, ok := r.s.caseFiles[id]
	r.s.mu.Unlock()

	if r.s.AfterRead != nil {
		r.s.AfterRead(id)
	}
	if !ok {
		return nil, nil
	}
	return &cf, nil
}

func (r caseFileStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.CaseFile, error) {
	return r.GetByID(ctx, id)
}

func (r caseFileStore) Save(ctx context.Context, cf *domain.CaseFile, expectedVersion int) error {
	if r.s.BeforeSave != nil {
		r.s.BeforeSave(cf.ID)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.caseFiles[cf.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrStaleVersion
	}
	cf.Version = expectedVersion + 1
	cf.UpdatedAt = time.Now()
	saved := *cf
	saved.Documents = nil
	r.s.caseFiles[cf.ID] = saved
	return nil
}

func (r caseFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.caseFiles, id)
	for docID, doc := range r.s.documents {
		if doc.CaseFileID == id {
			delete(r.s.documents, docID)
		}
	}
	kept := r.s.caseFlow[:0:0]
	for _, t := range r.s.caseFlow {
		if t.CaseFileID != id {
			kept = append(kept, t)
		}
	}
	r.s.caseFlow = kept
	return nil
}

func (r caseFileStore) List(ctx context.Context, filter domain.CaseFileFilter, params domain.PaginationParams) ([]domain.CaseFile, int64, error) {
	params.Normalize()
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, params), int64(len(matched)), nil
}

func (r caseFileStore) CountByStatus(ctx context.Context, filter domain.CaseFileFilter) (map[domain.CaseFileStatus]int64, error) {
	counts := make(map[domain.CaseFileStatus]int64)
	for _, cf := range r.matching(filter) {
		counts[cf.Status]++
	}
	return counts, nil
}

func (r caseFileStore) CountPendingFor(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, cf := range r.s.caseFiles {
		if cf.Status == domain.CaseFilePendingApproval && cf.IsAssignedTo(userID) {
			n++
		}
	}
	return n, nil
}

func (r caseFileStore) matching(filter domain.CaseFileFilter) []domain.CaseFile {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []domain.CaseFile
	for _, cf := range r.s.caseFiles {
		if search != "" && !strings.Contains(strings.ToLower(cf.CaseNumber), search) && !strings.Contains(strings.ToLower(cf.Title), search) {
			continue
		}
		if filter.Status != nil && cf.Status != *filter.Status {
			continue
		}
		if filter.DepartmentID != nil && cf.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.ScopeDepartmentID != nil && cf.DepartmentID != *filter.ScopeDepartmentID {
			continue
		}
		if u := filter.ScopeUserID; u != nil && cf.CreatedBy != *u && !cf.IsAssignedTo(*u) {
			continue
		}
		out = append(out, cf)
	}
	return out
}

type caseFlowStore struct{ s *Store }

func (r caseFlowStore) Append(ctx context.Context, t *domain.CaseFileTransition) error {
	if r.s.AppendErr != nil {
		return r.s.AppendErr
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq++
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Seq = r.s.seq
	t.CreatedAt = time.Now()
	r.s.caseFlow = append(r.s.caseFlow, *t)
	return nil
}

func (r caseFlowStore) ListByCaseFile(ctx context.Context, caseFileID uuid.UUID) ([]domain.CaseFileTransition, error) {
	rows := r.s.CaseFileLedger(caseFileID)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq > rows[j].Seq })
	return rows, nil
}

func (r caseFlowStore) FindLatestMatching(ctx context.Context, caseFileID uuid.UUID, match domain.TransitionMatch) (*domain.CaseFileTransition, error) {
	rows, _ := r.ListByCaseFile(ctx, caseFileID)
	for _, t := range rows {
		if match.Matches(t) {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

type documentStore struct{ s *Store }

func (r documentStore) Create(ctx context.Context, doc *domain.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc.CreatedAt = time.Now()
	r.s.documents[doc.ID] = *doc
	return nil
}

func (r documentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc, ok := r.s.documents[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (r documentStore) ListByCaseFile(ctx context.Context, caseFileID uuid.UUID) ([]domain.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var docs []domain.Document
	for _, doc := range r.s.documents {
		if doc.CaseFileID == caseFileID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.Before(docs[j].CreatedAt) })
	return docs, nil
}

func (r documentStore) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.documents, id)
	return nil
}

type newsStore struct{ s *Store }

func (r newsStore) Create(ctx context.Context, n *domain.News) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.news {
		if existing.Slug == n.Slug {
			return repository.ErrDuplicateKey
		}
	}
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	r.s.news[n.ID] = *n
	return nil
}

func (r newsStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.News, error) {
	r.s.mu.Lock()
	n, ok := r.s.news[id]
	r.s.mu.Unlock()

	if r.s.AfterRead != nil {
		r.s.AfterRead(id)
	}
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r newsStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.News, error) {
	return r.GetByID(ctx, id)
}

func (r newsStore) GetBySlug(ctx context.Context, slug string) (*domain.News, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.news {
		if n.Slug == slug {
			return &n, nil
		}
	}
	return nil, nil
}

func (r newsStore) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.news {
		if n.Slug == slug && (excludeID == nil || n.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r newsStore) Save(ctx context.Context, n *domain.News, expectedVersion int) error {
	if r.s.BeforeSave != nil {
		r.s.BeforeSave(n.ID)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.news[n.ID]
	if !ok || stored.Version != expectedVersion {
		return repository.ErrStaleVersion
	}
	for _, other := range r.s.news {
		if other.ID != n.ID && other.Slug == n.Slug {
			return repository.ErrDuplicateKey
		}
	}
	n.Version = expectedVersion + 1
	n.UpdatedAt = time.Now()
	r.s.news[n.ID] = *n
	return nil
}

func (r newsStore) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.news, id)
	kept := r.s.newsFlow[:0:0]
	for _, t := range r.s.newsFlow {
		if t.NewsID != id {
			kept = append(kept, t)
		}
	}
	r.s.newsFlow = kept
	return nil
}

func (r newsStore) List(ctx context.Context, filter domain.NewsFilter, params domain.PaginationParams) ([]domain.News, int64, error) {
	params.Normalize()

	r.s.mu.Lock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []domain.News
	for _, n := range r.s.news {
		if filter.PublishedOnly && n.Status != domain.NewsPublished {
			continue
		}
		if !filter.PublishedOnly && filter.Status != nil && n.Status != *filter.Status {
			continue
		}
		if filter.Type != nil && n.Type != *filter.Type {
			continue
		}
		if filter.AuthorID != nil && n.AuthorID != *filter.AuthorID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(n.Title), search) && !strings.Contains(strings.ToLower(n.Content), search) {
			continue
		}
		matched = append(matched, n)
	}
	r.s.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return paginate(matched, params), int64(len(matched)), nil
}

func (r newsStore) CountByStatus(ctx context.Context) (map[domain.NewsStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := make(map[domain.NewsStatus]int64)
	for _, n := range r.s.news {
		counts[n.Status]++
	}
	return counts, nil
}

func (r newsStore) CountByType(ctx context.Context) (map[domain.NewsType]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := make(map[domain.NewsType]int64)
	for _, n := range r.s.news {
		counts[n.Type]++
	}
	return counts, nil
}

func (r newsStore) CountPublishedSince(ctx context.Context, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, n := range r.s.news {
		if n.Status == domain.NewsPublished && n.PublishedAt != nil && !n.PublishedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type newsFlowStore struct{ s *Store }

func (r newsFlowStore) Append(ctx context.Context, t *domain.NewsTransition) error {
	if r.s.AppendErr != nil {
		return r.s.AppendErr
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.seq++
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Seq = r.s.seq
	t.CreatedAt = time.Now()
	r.s.newsFlow = append(r.s.newsFlow, *t)
	return nil
}

func (r newsFlowStore) ListByNews(ctx context.Context, newsID uuid.UUID) ([]domain.NewsTransition, error) {
	rows := r.s.NewsLedger(newsID)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq > rows[j].Seq })
	return rows, nil
}

func paginate[T any](items []T, params domain.PaginationParams) []T {
	start := params.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
