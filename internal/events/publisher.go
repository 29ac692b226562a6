package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/petermazzocco/interior-admin/models"
)

// Conn is satisfied by *nats.Conn.
type Conn interface {
	Publish(subj string, data []byte) error
}

func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("interior-admin"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return nc, nil
}

// Publisher sends change events to <prefix>.<kind>.<change>.
type Publisher struct {
	conn   Conn
	prefix string
}

func New(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

func Subject(prefix string, kind models.Kind, change models.Change) string {
	return fmt.Sprintf("%s.%s.%s", prefix, kind, change)
}

func (p *Publisher) Publish(_ context.Context, ev models.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	subject := Subject(p.prefix, ev.Kind, ev.Change)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Nop drops every event. Used when no NATS url is configured.
type Nop struct{}

func (Nop) Publish(context.Context, models.ChangeEvent) error { return nil }
