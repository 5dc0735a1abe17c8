package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName is the JetStream stream holding domain events.
	StreamName = "SHIP_EVENTS"
	// SubjectPrefix prefixes the event type to form the subject.
	SubjectPrefix = "ship.events."

	// SHIP_EVENTS limits
	streamMaxAge = 7 * 24 * time.Hour
	dedupWindow  = 2 * time.Minute
)

// Connect opens the connection shared by the publisher and the subscriber.
func Connect(url string) (*nats.Conn, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url is empty")
	}
	nc, err := nats.Connect(url,
		nats.Name("ship-framework-be"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Subject returns the subject an event type is published on.
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

func ensureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{SubjectPrefix + ">"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     streamMaxAge,
		Duplicates: dedupWindow,
	})
	return err
}
