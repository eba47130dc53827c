package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"

	apperrors "github.com/allisson/orderflow/internal/errors"
	"github.com/allisson/orderflow/internal/registry"
)

// fakeRegistry serves schemas from memory and counts lookups.
type fakeRegistry struct {
	mu          sync.Mutex
	latest      map[string]*registry.Schema
	byID        map[int]string
	latestCalls int
	byIDCalls   int
	latestErr   error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		latest: map[string]*registry.Schema{
			"orders-value": {Subject: "orders-value", Version: 1, ID: 11, Schema: OrderPlacedSchema},
		},
		byID: map[int]string{11: OrderPlacedSchema},
	}
}

func (f *fakeRegistry) LatestSchema(_ context.Context, subject string) (*registry.Schema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.latestCalls++
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	schema, ok := f.latest[subject]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return schema, nil
}

func (f *fakeRegistry) SchemaByID(_ context.Context, id int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.byIDCalls++
	schema, ok := f.byID[id]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return schema, nil
}

// recordingWriter captures written messages.
type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

var errBroker = errors.New("kafka: leader not available")
