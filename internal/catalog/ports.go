package catalog

import (
	"context"

	"github.com/petermazzocco/interior-admin/models"
)

// Repository is the remote collection store. Implementations return
// errors classified with the models error classes where they can.
type Repository interface {
	List(ctx context.Context, kind models.Kind, filter models.Filter) ([]models.Record, error)
	Get(ctx context.Context, kind models.Kind, id string) (models.Record, error)
	// Create assigns the id and timestamps and returns the stored record.
	Create(ctx context.Context, kind models.Kind, rec models.Record) (models.Record, error)
	// Update applies only the fields set in patch and returns the full
	// record as stored afterwards.
	Update(ctx context.Context, kind models.Kind, id string, patch models.Patch) (models.Record, error)
	Delete(ctx context.Context, kind models.Kind, id string) error
}

// AssetStore hosts image files.
type AssetStore interface {
	Upload(ctx context.Context, u models.Upload) (models.ImageRef, error)
	Delete(ctx context.Context, deletionToken string) error
}

// Preparer checks and normalizes an image before it is uploaded. It must
// not touch the network.
type Preparer interface {
	Prepare(u models.Upload) (models.Upload, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// Recorder receives intent and asset call outcomes.
type Recorder interface {
	Intent(kind models.Kind, op string, state State)
	AssetCall(op string, err error)
}

type nopPreparer struct{}

func (nopPreparer) Prepare(u models.Upload) (models.Upload, error) { return u, nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, models.ChangeEvent) error { return nil }

type nopRecorder struct{}

func (nopRecorder) Intent(models.Kind, string, State) {}

func (nopRecorder) AssetCall(string, error) {}
