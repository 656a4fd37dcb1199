package services

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/vetreportflow/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RecordStore persists report records keyed by document id.
type RecordStore interface {
	Create(ctx context.Context, record *models.Record) error
	Save(ctx context.Context, record *models.Record) error
	Get(ctx context.Context, documentID string) (*models.Record, error)
	List(ctx context.Context, uploadedBy string, limit int) ([]*models.Record, error)
	// FindCompleteByHash returns nil when no completed record has the hash.
	FindCompleteByHash(ctx context.Context, fileHash string) (*models.Record, error)
	UpdateStatus(ctx context.Context, documentID, newStatus, errDetails string) error
}

// FirestoreStore is the Firestore-backed RecordStore.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *FirestoreStore) Create(ctx context.Context, record *models.Record) error {
	if _, err := s.col().Doc(record.DocumentID).Create(ctx, record); err != nil {
		return fmt.Errorf("%w: failed to create record %s: %w", ErrRecordStore, record.DocumentID, err)
	}
	return nil
}

func (s *FirestoreStore) Save(ctx context.Context, record *models.Record) error {
	if _, err := s.col().Doc(record.DocumentID).Set(ctx, record); err != nil {
		return fmt.Errorf("%w: failed to save record %s: %w", ErrRecordStore, record.DocumentID, err)
	}
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, documentID string) (*models.Record, error) {
	snap, err := s.col().Doc(documentID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get record %s: %w", ErrRecordStore, documentID, err)
	}
	var record models.Record
	if err := snap.DataTo(&record); err != nil {
		return nil, fmt.Errorf("%w: failed to decode record %s: %w", ErrRecordStore, documentID, err)
	}
	return &record, nil
}

func (s *FirestoreStore) List(ctx context.Context, uploadedBy string, limit int) ([]*models.Record, error) {
	query := s.col().OrderBy("createdAt", firestore.Desc).Limit(limit)
	if uploadedBy != "" {
		query = s.col().Where("uploadedBy", "==", uploadedBy).OrderBy("createdAt", firestore.Desc).Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	records := []*models.Record{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to list records: %w", ErrRecordStore, err)
		}
		var record models.Record
		if err := snap.DataTo(&record); err != nil {
			return nil, fmt.Errorf("%w: failed to decode record %s: %w", ErrRecordStore, snap.Ref.ID, err)
		}
		records = append(records, &record)
	}
	return records, nil
}

func (s *FirestoreStore) FindCompleteByHash(ctx context.Context, fileHash string) (*models.Record, error) {
	docs, err := s.col().
		Where("fileHash", "==", fileHash).
		Where("status", "==", models.StatusComplete).
		Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query for duplicates: %w", ErrRecordStore, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var record models.Record
	if err := docs[0].DataTo(&record); err != nil {
		return nil, fmt.Errorf("%w: failed to decode record %s: %w", ErrRecordStore, docs[0].Ref.ID, err)
	}
	return &record, nil
}

func (s *FirestoreStore) UpdateStatus(ctx context.Context, documentID, newStatus, errDetails string) error {
	updates := []firestore.Update{
		{Path: "status", Value: newStatus},
	}
	if errDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: errDetails})
	}
	if _, err := s.col().Doc(documentID).Update(ctx, updates); err != nil {
		return fmt.Errorf("%w: failed to update status of %s: %w", ErrRecordStore, documentID, err)
	}
	return nil
}
