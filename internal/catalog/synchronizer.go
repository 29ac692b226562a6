package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/petermazzocco/interior-admin/internal/access"
	"github.com/petermazzocco/interior-admin/internal/logger"
	"github.com/petermazzocco/interior-admin/models"
)

// Synchronizer runs dashboard intents: it validates and authorizes them,
// writes through the Repository, keeps image assets in step with the
// records that reference them and updates the caller's View once the store
// has confirmed the change.
type Synchronizer struct {
	repo      Repository
	assets    AssetStore
	gate      *access.Gate
	prep      Preparer
	publisher Publisher
	recorder  Recorder
	views     *Views
	now       func() time.Time
}

type Option func(*Synchronizer)

func WithGate(g *access.Gate) Option { return func(s *Synchronizer) { s.gate = g } }

func WithPreparer(p Preparer) Option { return func(s *Synchronizer) { s.prep = p } }

func WithPublisher(p Publisher) Option { return func(s *Synchronizer) { s.publisher = p } }

func WithRecorder(r Recorder) Option { return func(s *Synchronizer) { s.recorder = r } }

func WithViews(v *Views) Option { return func(s *Synchronizer) { s.views = v } }

func WithClock(now func() time.Time) Option { return func(s *Synchronizer) { s.now = now } }

func New(repo Repository, assets AssetStore, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		repo:      repo,
		assets:    assets,
		gate:      access.NewGate(),
		prep:      nopPreparer{},
		publisher: nopPublisher{},
		recorder:  nopRecorder{},
		views:     NewViews(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// View returns the in-memory view of the caller's session.
func (s *Synchronizer) View(id models.Identity) *View {
	return s.views.For(id)
}

// Forget drops the caller's view.
func (s *Synchronizer) Forget(id models.Identity) {
	s.views.Drop(id)
}

// AddRecord creates rec in kind. Images must already be uploaded.
func (s *Synchronizer) AddRecord(ctx context.Context, id models.Identity, kind models.Kind, rec models.Record) (Result, error) {
	in := newIntent(logger.FromContext(ctx), kind, string(access.OpCreate))

	in.enter(PhaseValidating)
	rec = normalizeRecord(rec)
	if err := validateRecord(kind, rec); err != nil {
		return s.fail(in, err, nil)
	}

	in.enter(PhaseAuthorizing)
	if err := s.gate.Authorize(id, access.OpCreate, kind).Err(); err != nil {
		return s.fail(in, err, nil)
	}

	in.enter(PhasePersisting)
	rec.ID = ""
	rec.Kind = kind
	created, err := s.repo.Create(ctx, kind, rec)
	if err != nil {
		return s.fail(in, persistence(err, "Could not save the %s record.", kind), nil)
	}

	s.View(id).add(kind, created)
	s.publish(ctx, in, id, models.ChangeCreated, created)
	return s.commit(in, created, nil)
}

// UpdateRecord applies patch to the record and replaces the view entry
// with the stored result. Images dropped by the patch are removed from the
// asset host afterwards.
func (s *Synchronizer) UpdateRecord(ctx context.Context, id models.Identity, kind models.Kind, recID string, patch models.Patch) (Result, error) {
	in := newIntent(logger.FromContext(ctx), kind, string(access.OpUpdate))

	in.enter(PhaseValidating)
	if err := validatePatch(kind, recID, patch); err != nil {
		return s.fail(in, err, nil)
	}

	in.enter(PhaseAuthorizing)
	if err := s.gate.Authorize(id, access.OpUpdate, kind).Err(); err != nil {
		return s.fail(in, err, nil)
	}

	in.enter(PhasePersisting)
	var before []models.ImageRef
	if patch.Images != nil {
		prev, err := s.repo.Get(ctx, kind, recID)
		if err != nil {
			return s.fail(in, persistence(err, "Could not load the %s record.", kind), nil)
		}
		before = prev.Images
	}
	updated, err := s.repo.Update(ctx, kind, recID, patch)
	if err != nil {
		return s.fail(in, persistence(err, "Could not update the %s record.", kind), nil)
	}
	s.View(id).put(kind, updated)

	var warnings []error
	if patch.Images != nil {
		in.enter(PhaseAssetSyncing)
		warnings = s.deleteAssets(ctx, in, kind, recID, dropped(before, updated.Images))
	}

	s.publish(ctx, in, id, models.ChangeUpdated, updated)
	return s.commit(in, updated, warnings)
}

// DeleteRecord removes the record's images from the asset host, then the
// record itself. Image deletion failures are returned as warnings and do
// not stop the delete. If the store delete fails after images were removed
// those images stay gone and the record stays in the view.
func (s *Synchronizer) DeleteRecord(ctx context.Context, id models.Identity, kind models.Kind, recID string) (Result, error) {
	in := newIntent(logger.FromContext(ctx), kind, string(access.OpDelete))

	in.enter(PhaseValidating)
	if !kind.Valid() {
		return s.fail(in, models.ValidationError("Unknown collection %q.", kind), nil)
	}
	if strings.TrimSpace(recID) == "" {
		return s.fail(in, models.ValidationError("A record id is required."), nil)
	}

	in.enter(PhaseAuthorizing)
	if err := s.gate.Authorize(id, access.OpDelete, kind).Err(); err != nil {
		return s.fail(in, err, nil)
	}

	in.enter(PhasePersisting)
	rec, err := s.repo.Get(ctx, kind, recID)
	if err != nil {
		return s.fail(in, persistence(err, "Could not load the %s record.", kind), nil)
	}

	in.enter(PhaseAssetSyncing)
	warnings := s.deleteAssets(ctx, in, kind, recID, rec.Images)

	in.enter(PhasePersisting)
	if err := s.repo.Delete(ctx, kind, recID); err != nil {
		return s.fail(in, persistence(err, "Could not delete the %s record.", kind), warnings)
	}

	s.View(id).remove(kind, recID)
	s.publish(ctx, in, id, models.ChangeDeleted, rec)
	return s.commit(in, rec, warnings)
}

// ListRecords returns the records of kind the caller may see that also
// match filter. Callers without access get an empty list and no error.
func (s *Synchronizer) ListRecords(ctx context.Context, id models.Identity, kind models.Kind, filter models.Filter) ([]models.Record, error) {
	in := newIntent(logger.FromContext(ctx), kind, string(access.OpViewAll))

	in.enter(PhaseValidating)
	if !kind.Valid() {
		_, err := s.fail(in, models.ValidationError("Unknown collection %q.", kind), nil)
		return nil, err
	}

	in.enter(PhaseAuthorizing)
	decision := s.gate.Authorize(id, access.OpViewAll, kind)
	if !decision.Allowed {
		in.log.Debug("list denied", "role", id.Role, "reason", decision.Reason)
		s.recorder.Intent(kind, in.op, StateRejected)
		return []models.Record{}, nil
	}

	scope := decision.Scope.Intersect(filter)
	if scope.Empty {
		s.View(id).replace(kind, nil, scope)
		s.recorder.Intent(kind, in.op, StateCommitted)
		return []models.Record{}, nil
	}

	in.enter(PhasePersisting)
	recs, err := s.repo.List(ctx, kind, scope)
	if err != nil {
		_, err = s.fail(in, persistence(err, "Could not load %s.", kind), nil)
		return nil, err
	}
	recs = slices.DeleteFunc(cloneAll(recs), func(r models.Record) bool { return !scope.Matches(r) })

	s.View(id).replace(kind, recs, scope)
	s.recorder.Intent(kind, in.op, StateCommitted)
	return recs, nil
}

// GetRecord returns one record the caller may see. The view answers first;
// a record it has not loaded is read from the store and checked against
// the caller's list scope. The view itself is left as it is.
func (s *Synchronizer) GetRecord(ctx context.Context, id models.Identity, kind models.Kind, recID string) (models.Record, error) {
	if !kind.Valid() {
		return models.Record{}, models.ValidationError("Unknown collection %q.", kind)
	}
	decision := s.gate.Authorize(id, access.OpViewAll, kind)
	if err := decision.Err(); err != nil {
		return models.Record{}, err
	}
	if rec, ok := s.View(id).Get(kind, recID); ok && decision.Scope.Matches(rec) {
		return rec, nil
	}
	rec, err := s.repo.Get(ctx, kind, recID)
	if err != nil {
		return models.Record{}, persistence(err, "Could not load the %s record.", kind)
	}
	if !decision.Scope.Matches(rec) {
		return models.Record{}, models.NotFoundError(kind, recID)
	}
	return rec, nil
}

// StageImages uploads the files for a record that already holds attached
// images. Every file is checked before the first upload. If an upload
// fails the images uploaded earlier in the batch are deleted again.
func (s *Synchronizer) StageImages(ctx context.Context, id models.Identity, kind models.Kind, attached int, uploads []models.Upload) ([]models.ImageRef, error) {
	in := newIntent(logger.FromContext(ctx), kind, "stage")

	in.enter(PhaseValidating)
	prepared, err := s.checkUploads(kind, attached, uploads)
	if err != nil {
		_, err = s.fail(in, err, nil)
		return nil, err
	}

	in.enter(PhaseAuthorizing)
	if s.gate.Authorize(id, access.OpCreate, kind).Err() != nil {
		if err := s.gate.Authorize(id, access.OpUpdate, kind).Err(); err != nil {
			_, err = s.fail(in, err, nil)
			return nil, err
		}
	}

	in.enter(PhaseAssetSyncing)
	refs := make([]models.ImageRef, 0, len(prepared))
	for _, u := range prepared {
		ref, err := s.assets.Upload(ctx, u)
		s.recorder.AssetCall("upload", err)
		if err == nil && (ref.DisplayURL == "" || ref.DeletionToken == "") {
			err = errors.New("asset host returned an incomplete reference")
		}
		if err != nil {
			in.log.Error("image upload failed", "file", u.Filename, "error", err)
			s.deleteAssets(ctx, in, kind, "", refs)
			_, err = s.fail(in, models.UploadError(err, "Uploading %s failed. Please try again.", u.Filename), nil)
			return nil, err
		}
		refs = append(refs, ref)
	}

	s.recorder.Intent(kind, in.op, StateCommitted)
	in.log.Info("images staged", "count", len(refs))
	return refs, nil
}

func (s *Synchronizer) checkUploads(kind models.Kind, attached int, uploads []models.Upload) ([]models.Upload, error) {
	if !kind.Valid() {
		return nil, models.ValidationError("Unknown collection %q.", kind)
	}
	policy := models.PolicyFor(kind)
	if policy.MaxImages == 0 {
		return nil, models.ValidationError("%s records do not take images.", kind)
	}
	if len(uploads) == 0 {
		return nil, models.ValidationError("Select at least one image.")
	}
	if attached < 0 {
		attached = 0
	}
	if attached+len(uploads) > policy.MaxImages {
		return nil, models.ValidationError("You can upload at most %d images.", policy.MaxImages)
	}
	for _, u := range uploads {
		if u.Size() == 0 {
			return nil, models.ValidationError("%s is empty.", u.Filename)
		}
		if u.Size() > policy.MaxImageBytes {
			return nil, models.ValidationError("%s is larger than %dMB.", u.Filename, policy.MaxImageBytes>>20)
		}
	}
	prepared := make([]models.Upload, 0, len(uploads))
	for _, u := range uploads {
		p, err := s.prep.Prepare(u)
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				return nil, err
			}
			return nil, models.UploadError(err, "Could not process %s.", u.Filename)
		}
		prepared = append(prepared, p)
	}
	return prepared, nil
}

// deleteAssets deletes images one after another and turns every failure
// into a CleanupWarning.
func (s *Synchronizer) deleteAssets(ctx context.Context, in *intent, kind models.Kind, recID string, refs []models.ImageRef) []error {
	var warnings []error
	for _, ref := range refs {
		if ref.DeletionToken == "" {
			continue
		}
		err := s.assets.Delete(ctx, ref.DeletionToken)
		s.recorder.AssetCall("delete", err)
		if err == nil {
			continue
		}
		w := &models.CleanupWarning{Kind: kind, RecordID: recID, Image: ref, Cause: err}
		in.log.Warn("PartialCleanupWarning", "id", recID, "url", ref.DisplayURL, "error", err)
		warnings = append(warnings, w)
	}
	return warnings
}

func (s *Synchronizer) publish(ctx context.Context, in *intent, id models.Identity, change models.Change, rec models.Record) {
	ev := models.ChangeEvent{Kind: in.kind, Change: change, Record: rec.Clone(), Actor: id.Email, At: s.now()}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		in.log.Warn("change event not published", "change", change, "id", rec.ID, "error", err)
	}
}

func (s *Synchronizer) commit(in *intent, rec models.Record, warnings []error) (Result, error) {
	s.recorder.Intent(in.kind, in.op, StateCommitted)
	in.log.Info("intent committed", "id", rec.ID, "warnings", len(warnings))
	return Result{
		State:    StateCommitted,
		Record:   rec.Clone(),
		Warnings: warnings,
		Trace:    slices.Clone(in.trace),
	}, nil
}

func (s *Synchronizer) fail(in *intent, err error, warnings []error) (Result, error) {
	state := in.stateFor(err)
	s.recorder.Intent(in.kind, in.op, state)
	if state == StateRejected {
		in.log.Info("intent rejected", "phase", in.phase(), "reason", models.Message(err))
	} else {
		in.log.Error("intent failed", "phase", in.phase(), "error", err)
	}
	return Result{State: state, Warnings: warnings, Trace: slices.Clone(in.trace)}, err
}

// persistence classifies store errors that carry no class of their own.
func persistence(err error, format string, args ...any) error {
	var classified *models.Error
	if errors.As(err, &classified) {
		return err
	}
	return models.PersistenceError(err, format, args...)
}

// dropped returns the images in before that are not in after.
func dropped(before, after []models.ImageRef) []models.ImageRef {
	var out []models.ImageRef
	for _, ref := range before {
		if !slices.Contains(after, ref) {
			out = append(out, ref)
		}
	}
	return out
}
