// Package blob implements the signature store as one JSON collection object
// per owner in a key-value blob store. Every write is a read-modify-write of
// the whole collection; the one-per-type rule is kept by filtering out
// same-type records before appending the new one.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
)

var _ model.SignatureStore = (*SignatureRepository)(nil)

// signatureRecord is the serialized form of a signature inside the
// collection object.
type signatureRecord struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	SignatureType string `json:"signatureType"`
	ImageData     string `json:"imageData"`
	UploadedAt    string `json:"uploadedAt"`
}

type SignatureRepository struct {
	storage model.Storage
	logger  *logger.Logger
}

func NewSignatureRepository(storage model.Storage, logger *logger.Logger) *SignatureRepository {
	return &SignatureRepository{
		storage: storage,
		logger:  logger,
	}
}

func collectionKey(ownerID uuid.UUID) string {
	return fmt.Sprintf("signatures/%s.json", ownerID)
}

// Upsert replaces any signature of the same type for the owner and appends
// the new one, then persists the whole collection.
func (r *SignatureRepository) Upsert(ctx context.Context, signature model.Signature) (model.Signature, error) {
	signatures := r.readCollection(ctx, signature.OwnerID)

	kept := signatures[:0]
	for _, s := range signatures {
		if s.Type != signature.Type {
			kept = append(kept, s)
		}
	}
	kept = append(kept, signature)

	if err := r.writeCollection(ctx, signature.OwnerID, kept); err != nil {
		return model.Signature{}, err
	}

	return signature, nil
}

func (r *SignatureRepository) GetByID(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) (model.Signature, error) {
	for _, s := range r.readCollection(ctx, ownerID) {
		if s.ID == id {
			return s, nil
		}
	}
	return model.Signature{}, model.ErrNotFound
}

// GetByOwnerID reads the owner's collection. Reads are best-effort: a
// missing object, an undecodable object, or a drifted record yields an
// empty or reduced result, never an error.
func (r *SignatureRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Signature, error) {
	return r.readCollection(ctx, ownerID), nil
}

func (r *SignatureRepository) GetByOwnerIDAndType(ctx context.Context, ownerID uuid.UUID, signatureType model.SignatureType) (model.Signature, error) {
	for _, s := range r.readCollection(ctx, ownerID) {
		if s.Type == signatureType {
			return s, nil
		}
	}
	return model.Signature{}, model.ErrNotFound
}

// Delete removes the signature with the given id and persists the reduced
// collection. An unknown id leaves the collection unchanged.
func (r *SignatureRepository) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	signatures := r.readCollection(ctx, ownerID)

	kept := signatures[:0]
	for _, s := range signatures {
		if s.ID != id {
			kept = append(kept, s)
		}
	}

	return r.writeCollection(ctx, ownerID, kept)
}

func (r *SignatureRepository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	if err := r.storage.Delete(ctx, collectionKey(ownerID)); err != nil {
		return fmt.Errorf("failed to clear signature collection: %w", err)
	}
	return nil
}

func (r *SignatureRepository) readCollection(ctx context.Context, ownerID uuid.UUID) []model.Signature {
	key := collectionKey(ownerID)

	exists, err := r.storage.Exists(ctx, key)
	if err != nil {
		r.logger.Error("failed to check signature collection, treating as empty", "key", key, "error", err)
		return nil
	}
	if !exists {
		return nil
	}

	reader, err := r.storage.Download(ctx, key)
	if err != nil {
		r.logger.Error("failed to download signature collection, treating as empty", "key", key, "error", err)
		return nil
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		r.logger.Error("failed to read signature collection, treating as empty", "key", key, "error", err)
		return nil
	}

	var records []signatureRecord
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Error("failed to decode signature collection, treating as empty", "key", key, "error", err)
		return nil
	}

	signatures := make([]model.Signature, 0, len(records))
	for _, rec := range records {
		signature, err := r.parseRecord(rec)
		if err != nil {
			r.logger.Warn("skipping unreadable signature record", "key", key, "id", rec.ID, "error", err)
			continue
		}
		signatures = append(signatures, signature)
	}

	return signatures
}

func (r *SignatureRepository) parseRecord(rec signatureRecord) (model.Signature, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return model.Signature{}, fmt.Errorf("invalid id: %w", err)
	}

	ownerID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return model.Signature{}, fmt.Errorf("invalid owner id: %w", err)
	}

	signatureType := model.SignatureType(rec.SignatureType)
	if !signatureType.Valid() {
		return model.Signature{}, fmt.Errorf("unknown signature type %q", rec.SignatureType)
	}

	uploadedAt, err := time.Parse(time.RFC3339Nano, rec.UploadedAt)
	if err != nil {
		return model.Signature{}, fmt.Errorf("invalid uploaded_at: %w", err)
	}

	return model.Signature{
		ID:         id,
		OwnerID:    ownerID,
		Type:       signatureType,
		ImageData:  rec.ImageData,
		UploadedAt: uploadedAt,
	}, nil
}

func (r *SignatureRepository) writeCollection(ctx context.Context, ownerID uuid.UUID, signatures []model.Signature) error {
	records := make([]signatureRecord, 0, len(signatures))
	for _, s := range signatures {
		records = append(records, signatureRecord{
			ID:            s.ID.String(),
			UserID:        s.OwnerID.String(),
			SignatureType: string(s.Type),
			ImageData:     s.ImageData,
			UploadedAt:    s.UploadedAt.Format(time.RFC3339Nano),
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode signature collection: %w", err)
	}

	if err := r.storage.Upload(ctx, collectionKey(ownerID), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to persist signature collection: %w", err)
	}

	return nil
}
