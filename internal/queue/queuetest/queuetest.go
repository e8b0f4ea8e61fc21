// Package queuetest records published messages in memory.
package queuetest

import (
	"context"
	"encoding/json"
	"sync"
)

type Message struct {
	Queue string
	Body  []byte
}

// Recorder is a queue.Publisher that keeps every message JSON encoded.
type Recorder struct {
	mu       sync.Mutex
	messages []Message

	FailWith error
}

func (r *Recorder) Publish(ctx context.Context, queue string, msg interface{}) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Queue: queue, Body: body})
	return nil
}

func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
