package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/petermazzocco/interior-admin/models"
)

// memRepo is an in-memory Repository with error injection.
type memRepo struct {
	mu        sync.Mutex
	seq       int
	docs      map[models.Kind][]models.Record
	calls     int
	failNext  map[string]error
	lastQuery models.Filter
}

func newMemRepo() *memRepo {
	return &memRepo{docs: make(map[models.Kind][]models.Record), failNext: make(map[string]error)}
}

func (m *memRepo) seed(kind models.Kind, recs ...models.Record) []models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Record, 0, len(recs))
	for _, r := range recs {
		m.seq++
		r.ID = fmt.Sprintf("%s-%d", kind, m.seq)
		r.Kind = kind
		r.CreatedAt = time.Unix(int64(m.seq), 0).UTC()
		r.UpdatedAt = r.CreatedAt
		m.docs[kind] = append(m.docs[kind], r.Clone())
		out = append(out, r.Clone())
	}
	return out
}

func (m *memRepo) failOn(method string, err error) {
	m.mu.Lock()
	m.failNext[method] = err
	m.mu.Unlock()
}

func (m *memRepo) take(method string) error {
	m.calls++
	err := m.failNext[method]
	delete(m.failNext, method)
	return err
}

func (m *memRepo) List(_ context.Context, kind models.Kind, filter models.Filter) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take("List"); err != nil {
		return nil, err
	}
	m.lastQuery = filter
	var out []models.Record
	for _, r := range m.docs[kind] {
		if filter.Matches(r) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, kind models.Kind, id string) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take("Get"); err != nil {
		return models.Record{}, err
	}
	i := m.index(kind, id)
	if i < 0 {
		return models.Record{}, models.NotFoundError(kind, id)
	}
	return m.docs[kind][i].Clone(), nil
}

func (m *memRepo) Create(_ context.Context, kind models.Kind, rec models.Record) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take("Create"); err != nil {
		return models.Record{}, err
	}
	if models.PolicyFor(kind).UniqueTitle {
		for _, r := range m.docs[kind] {
			if r.Title == rec.Title && r.Category == rec.Category {
				return models.Record{}, models.DuplicateError("%q already exists in %s.", rec.Title, rec.Category)
			}
		}
	}
	m.seq++
	rec = rec.Clone()
	rec.ID = fmt.Sprintf("%s-%d", kind, m.seq)
	rec.Kind = kind
	rec.CreatedAt = time.Unix(int64(m.seq), 0).UTC()
	rec.UpdatedAt = rec.CreatedAt
	m.docs[kind] = append(m.docs[kind], rec)
	return rec.Clone(), nil
}

func (m *memRepo) Update(_ context.Context, kind models.Kind, id string, patch models.Patch) (models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take("Update"); err != nil {
		return models.Record{}, err
	}
	i := m.index(kind, id)
	if i < 0 {
		return models.Record{}, models.NotFoundError(kind, id)
	}
	next := patch.Apply(m.docs[kind][i])
	m.docs[kind][i] = next
	return next.Clone(), nil
}

func (m *memRepo) Delete(_ context.Context, kind models.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.take("Delete"); err != nil {
		return err
	}
	i := m.index(kind, id)
	if i < 0 {
		return models.NotFoundError(kind, id)
	}
	m.docs[kind] = slices.Delete(m.docs[kind], i, i+1)
	return nil
}

func (m *memRepo) count(kind models.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[kind])
}

func (m *memRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *memRepo) index(kind models.Kind, id string) int {
	return slices.IndexFunc(m.docs[kind], func(r models.Record) bool { return r.ID == id })
}

// fakeAssets records every call; tokens listed in failDelete fail, and
// uploads fail once failUploadAt uploads have succeeded.
type fakeAssets struct {
	mu           sync.Mutex
	uploads      []string
	deletes      []string
	failDelete   map[string]bool
	failUploadAt int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{failDelete: make(map[string]bool), failUploadAt: -1}
}

func (f *fakeAssets) Upload(_ context.Context, u models.Upload) (models.ImageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUploadAt >= 0 && len(f.uploads) == f.failUploadAt {
		f.uploads = append(f.uploads, u.Filename)
		return models.ImageRef{}, errors.New("host returned 500")
	}
	f.uploads = append(f.uploads, u.Filename)
	return models.ImageRef{
		DisplayURL:    "https://i.host.test/" + u.Filename,
		DeletionToken: "https://del.host.test/" + u.Filename,
	}, nil
}

func (f *fakeAssets) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, token)
	if f.failDelete[token] {
		return errors.New("delete returned 404")
	}
	return nil
}

func (f *fakeAssets) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads) + len(f.deletes)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type recordingRecorder struct {
	mu      sync.Mutex
	intents []string
	assets  []string
}

func (r *recordingRecorder) Intent(kind models.Kind, op string, state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intents = append(r.intents, fmt.Sprintf("%s/%s/%s", kind, op, state))
}

func (r *recordingRecorder) AssetCall(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets = append(r.assets, fmt.Sprintf("%s/%t", op, err == nil))
}

type rejectingPreparer struct{}

func (rejectingPreparer) Prepare(u models.Upload) (models.Upload, error) {
	return u, models.ValidationError("%s is not an image.", u.Filename)
}
