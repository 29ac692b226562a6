package firestore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/petermazzocco/interior-admin/models"
)

// Open connects to Firestore. FIRESTORE_EMULATOR_HOST is honoured by the
// client library.
func Open(ctx context.Context, projectID string) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// Store maps each kind onto the Firestore collection of the same name.
type Store struct {
	client *firestore.Client
	now    func() time.Time
}

func New(client *firestore.Client) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) collection(kind models.Kind) *firestore.CollectionRef {
	return s.client.Collection(string(kind))
}

func (s *Store) List(ctx context.Context, kind models.Kind, filter models.Filter) ([]models.Record, error) {
	if filter.Empty {
		return []models.Record{}, nil
	}
	q := query(s.collection(kind).Query, kind, filter)

	var out []models.Record
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, models.PersistenceError(err, "Could not load %s.", kind)
		}
		out = append(out, fromData(kind, snap.Ref.ID, snap.Data()))
	}

	// Ordered here rather than in the query so that role exclusions need no
	// composite index.
	newestFirst := models.PolicyFor(kind).NewestFirst
	slices.SortStableFunc(out, func(a, b models.Record) int {
		if newestFirst {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if out == nil {
		out = []models.Record{}
	}
	return out, nil
}

func query(q firestore.Query, kind models.Kind, filter models.Filter) firestore.Query {
	s := slotsFor(kind)
	if filter.Title != "" {
		q = q.Where(s.title, "==", filter.Title)
	}
	if filter.Category != "" {
		q = q.Where(s.category, "==", filter.Category)
	}
	if filter.Location != "" {
		q = q.Where(s.location, "==", filter.Location)
	}
	if filter.Role != "" {
		q = q.Where(fieldRole, "==", filter.Role)
	}
	if len(filter.RoleNot) > 0 {
		q = q.Where(fieldRole, "not-in", filter.RoleNot)
	}
	return q
}

func (s *Store) Get(ctx context.Context, kind models.Kind, id string) (models.Record, error) {
	snap, err := s.collection(kind).Doc(id).Get(ctx)
	if err != nil {
		return models.Record{}, classify(err, kind, id, "Could not load the %s record.")
	}
	return fromData(kind, snap.Ref.ID, snap.Data()), nil
}

func (s *Store) Create(ctx context.Context, kind models.Kind, rec models.Record) (models.Record, error) {
	now := s.now().UTC()
	rec = rec.Clone()
	rec.Kind = kind
	rec.CreatedAt = now
	rec.UpdatedAt = now
	ref := s.collection(kind).NewDoc()
	rec.ID = ref.ID

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if models.PolicyFor(kind).UniqueTitle {
			dup := query(s.collection(kind).Query, kind, models.Filter{Title: rec.Title, Category: rec.Category}).Limit(1)
			existing, err := tx.Documents(dup).GetAll()
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return models.DuplicateError("A design titled %q already exists in %s.", rec.Title, rec.Category)
			}
		}
		return tx.Create(ref, toData(kind, rec))
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return models.Record{}, err
		}
		return models.Record{}, models.PersistenceError(err, "Could not save the %s record.", kind)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, kind models.Kind, id string, patch models.Patch) (models.Record, error) {
	ref := s.collection(kind).Doc(id)
	if _, err := ref.Update(ctx, updates(kind, patch, s.now().UTC())); err != nil {
		return models.Record{}, classify(err, kind, id, "Could not update the %s record.")
	}
	return s.Get(ctx, kind, id)
}

func updates(kind models.Kind, p models.Patch, now time.Time) []firestore.Update {
	s := slotsFor(kind)
	var ups []firestore.Update
	if p.Title != nil {
		ups = append(ups, firestore.Update{Path: s.title, Value: *p.Title})
	}
	if p.Category != nil {
		ups = append(ups, firestore.Update{Path: s.category, Value: *p.Category})
	}
	if p.Location != nil {
		ups = append(ups, firestore.Update{Path: s.location, Value: *p.Location})
	}
	if p.Role != nil {
		ups = append(ups, firestore.Update{Path: fieldRole, Value: *p.Role})
	}
	keys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		ups = append(ups, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: p.Fields[k]})
	}
	if p.Images != nil {
		ups = append(ups, firestore.Update{Path: fieldImages, Value: imagesToData(*p.Images)})
	}
	return append(ups, firestore.Update{Path: fieldUpdatedAt, Value: now})
}

func (s *Store) Delete(ctx context.Context, kind models.Kind, id string) error {
	if _, err := s.collection(kind).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return classify(err, kind, id, "Could not delete the %s record.")
	}
	return nil
}

func classify(err error, kind models.Kind, id, format string) error {
	if status.Code(err) == codes.NotFound {
		return models.NotFoundError(kind, id)
	}
	return models.PersistenceError(err, format, kind)
}
