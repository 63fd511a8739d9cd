// Package mongo provides a durable activity sink backed by MongoDB, giving
// deployments an audit trail of agent task events beyond process lifetime.
package mongo

import (
	"context"
	"time"

	"github.com/clarionhq/clarion/core"
	"github.com/clarionhq/clarion/logging"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Sink stores activity events in a collection. Record is called from the
// reporter's drain goroutine, so insert latency delays other sinks but never
// the core.
type Sink struct {
	coll    *mongo.Collection
	timeout time.Duration
	logger  logging.Logger
}

// NewSink connects to MongoDB and returns a sink writing into
// database/collection. The context bounds the initial connection handshake.
func NewSink(ctx context.Context, uri, database, collection string, logger logging.Logger) (*Sink, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Sink{
		coll:    client.Database(database).Collection(collection),
		timeout: 5 * time.Second,
		logger:  logger,
	}, nil
}

// Record implements core.Sink. Insert failures are logged and dropped; the
// activity stream is observability data, not control flow.
func (s *Sink) Record(ev core.ActivityEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.coll.InsertOne(ctx, ev); err != nil {
		s.logger.Warn("activity event insert failed", "event_id", ev.ID, "error", err)
	}
}

// Close disconnects the underlying client.
func (s *Sink) Close(ctx context.Context) error {
	return s.coll.Database().Client().Disconnect(ctx)
}
