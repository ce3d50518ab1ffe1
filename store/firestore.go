package store

import (
	"context"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"spendly/backend/models"
)

// FirestoreStore implements DocumentStore on top of Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore wraps an initialized Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) buildQuery(path string, q Query) firestore.Query {
	query := s.client.Collection(path).Query
	for _, f := range q.Filters {
		query = query.Where(f.Field, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Descending {
			dir = firestore.Desc
		}
		query = query.OrderBy(q.OrderBy, dir)
	}
	return query
}

// Subscribe pumps the Firestore snapshot listener into a channel. The
// goroutine exits and closes the channel when the subscription is
// closed or the listener fails.
func (s *FirestoreStore) Subscribe(ctx context.Context, path string, q Query) (*Subscription, error) {
	query := s.buildQuery(path, q)

	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan Snapshot, 1)
	sub := NewSubscription(ch, cancel)

	go func() {
		defer close(ch)

		snaps := query.Snapshots(ctx)
		defer snaps.Stop()

		for {
			qs, err := snaps.Next()
			if err != nil {
				if ctx.Err() != nil {
					// Subscription closed, not a backend failure.
					return
				}
				log.Printf("Error on snapshot listener for %s: %v", path, err)
				deliver(ctx, ch, Snapshot{Err: &models.BackendError{Op: "subscribe " + path, Err: err}})
				return
			}

			docs, err := collectDocs(qs.Documents)
			if err != nil {
				log.Printf("Error reading snapshot documents for %s: %v", path, err)
				deliver(ctx, ch, Snapshot{Err: &models.BackendError{Op: "read snapshot " + path, Err: err}})
				return
			}

			if !deliver(ctx, ch, Snapshot{Docs: docs}) {
				return
			}
		}
	}()

	return sub, nil
}

func deliver(ctx context.Context, ch chan<- Snapshot, snap Snapshot) bool {
	select {
	case ch <- snap:
		return true
	case <-ctx.Done():
		return false
	}
}

func collectDocs(it *firestore.DocumentIterator) ([]Document, error) {
	var docs []Document
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: doc.Ref.ID, Data: doc.Data()})
	}
}

func (s *FirestoreStore) Add(ctx context.Context, path string, data map[string]interface{}) (string, error) {
	ref, _, err := s.client.Collection(path).Add(ctx, data)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Update(ctx context.Context, path, id string, data map[string]interface{}) error {
	_, err := s.client.Collection(path).Doc(id).Set(ctx, data, firestore.MergeAll)
	return err
}

func (s *FirestoreStore) Set(ctx context.Context, path, id string, data map[string]interface{}) error {
	_, err := s.client.Collection(path).Doc(id).Set(ctx, data)
	return err
}

func (s *FirestoreStore) Delete(ctx context.Context, path, id string) error {
	_, err := s.client.Collection(path).Doc(id).Delete(ctx)
	return err
}

func (s *FirestoreStore) GetAll(ctx context.Context, path string) ([]Document, error) {
	return collectDocs(s.client.Collection(path).Documents(ctx))
}
