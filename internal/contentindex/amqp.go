package contentindex

import (
	"context"
	"time"

	"github.com/rushigund/Techligenc-website-backend/internal/listing"
	"github.com/rushigund/Techligenc-website-backend/internal/queue"
)

// Message is what the queue backend publishes for every operation.
type Message struct {
	EntityType  string            `json:"entityType"`
	Operation   listing.Operation `json:"operation"`
	Document    Document          `json:"document"`
	PublishedAt time.Time         `json:"publishedAt"`
}

// Queue hands index operations to a downstream indexer over a message queue.
// Consumers key by (entityType, document.id), so redelivery is harmless.
type Queue struct {
	publisher queue.Publisher
	name      string
}

func NewQueue(publisher queue.Publisher, name string) *Queue {
	return &Queue{publisher: publisher, name: name}
}

func (q *Queue) Apply(ctx context.Context, entityType string, doc Document, op listing.Operation) error {
	return q.publisher.Publish(ctx, q.name, Message{
		EntityType:  entityType,
		Operation:   op,
		Document:    doc,
		PublishedAt: time.Now().UTC(),
	})
}
