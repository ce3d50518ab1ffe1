package store

import (
	"context"

	"spendly/backend/models"
)

// DisabledStore stands in for the document store when the backend is
// not configured. Reads serve empty data so the rest of the service
// stays inspectable; writes fail with a ConfigurationError. Only used
// outside production.
type DisabledStore struct{}

// NewDisabledStore returns the inert store used when Firebase is not
// configured.
func NewDisabledStore() *DisabledStore {
	return &DisabledStore{}
}

func (s *DisabledStore) Subscribe(ctx context.Context, path string, q Query) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Snapshot, 1)
	ch <- Snapshot{}

	go func() {
		<-ctx.Done()
		close(ch)
	}()

	return NewSubscription(ch, cancel), nil
}

func (s *DisabledStore) Add(ctx context.Context, path string, data map[string]interface{}) (string, error) {
	return "", s.err()
}

func (s *DisabledStore) Update(ctx context.Context, path, id string, data map[string]interface{}) error {
	return s.err()
}

func (s *DisabledStore) Set(ctx context.Context, path, id string, data map[string]interface{}) error {
	return s.err()
}

func (s *DisabledStore) Delete(ctx context.Context, path, id string) error {
	return s.err()
}

func (s *DisabledStore) GetAll(ctx context.Context, path string) ([]Document, error) {
	return nil, nil
}

func (s *DisabledStore) err() error {
	return &models.ConfigurationError{Message: "Firebase is not properly configured. Please check your environment variables."}
}
