package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cliniqa/clinicsign-server/internal/logger"
	"github.com/cliniqa/clinicsign-server/internal/model"
)

// MaxImageBytes is the size ceiling for an uploaded signature image.
const MaxImageBytes = 2 * 1024 * 1024

var allowedMimeTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
}

// Signature manages uploaded signature images for clinic staff.
type Signature struct {
	store  model.SignatureStore
	logger *logger.Logger
}

func NewSignature(store model.SignatureStore, logger *logger.Logger) *Signature {
	return &Signature{
		store:  store,
		logger: logger,
	}
}

// Upload validates and stores a signature image for its owner. Any existing
// signature of the same type is superseded.
func (s *Signature) Upload(ctx context.Context, params model.UploadParams) (model.Signature, error) {
	if err := validateUpload(params.MimeType, params.Size, params.Type); err != nil {
		return model.Signature{}, err
	}

	signature := model.Signature{
		ID:         uuid.New(),
		OwnerID:    params.OwnerID,
		Type:       params.Type,
		ImageData:  encodeDataURL(params.MimeType, params.Data),
		UploadedAt: time.Now().UTC(),
	}

	saved, err := s.store.Upsert(ctx, signature)
	if err != nil {
		return model.Signature{}, fmt.Errorf("could not save signature: %w", err)
	}

	return saved, nil
}

// List returns the owner's signatures. Reads are best-effort: a failing
// backend read is logged and yields an empty result rather than an error,
// so a corrupted collection never takes the signature manager down.
func (s *Signature) List(ctx context.Context, ownerID uuid.UUID) ([]model.Signature, error) {
	signatures, err := s.store.GetByOwnerID(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to read signatures, returning empty collection",
			"owner_id", ownerID,
			"error", err)
		return []model.Signature{}, nil
	}

	if signatures == nil {
		signatures = []model.Signature{}
	}
	return signatures, nil
}

// GetByType returns the owner's signature of the given type. At most one
// can exist per type.
func (s *Signature) GetByType(ctx context.Context, ownerID uuid.UUID, signatureType model.SignatureType) (model.Signature, error) {
	if !signatureType.Valid() {
		return model.Signature{}, model.ErrInvalidSignatureType
	}

	signature, err := s.store.GetByOwnerIDAndType(ctx, ownerID, signatureType)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Signature{}, model.ErrNotFound
		}
		return model.Signature{}, fmt.Errorf("failed to get signature by type: %w", err)
	}

	return signature, nil
}

// Delete removes the signature with the given id. Deleting an unknown id
// succeeds without effect.
func (s *Signature) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("could not delete signature: %w", err)
	}
	return nil
}

// Update replaces the image of an existing signature, keeping its type. The
// new payload is validated before anything is touched, so a rejected update
// leaves the existing signature in place. The replacement gets a fresh id
// and timestamp.
func (s *Signature) Update(ctx context.Context, ownerID uuid.UUID, id uuid.UUID, data []byte, mimeType string, size int64) (model.Signature, error) {
	existing, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Signature{}, model.ErrNotFound
		}
		return model.Signature{}, fmt.Errorf("failed to get signature: %w", err)
	}

	if err := validateUpload(mimeType, size, existing.Type); err != nil {
		return model.Signature{}, err
	}

	replacement := model.Signature{
		ID:         uuid.New(),
		OwnerID:    ownerID,
		Type:       existing.Type,
		ImageData:  encodeDataURL(mimeType, data),
		UploadedAt: time.Now().UTC(),
	}

	saved, err := s.store.Upsert(ctx, replacement)
	if err != nil {
		return model.Signature{}, fmt.Errorf("could not update signature: %w", err)
	}

	return saved, nil
}

// Clear erases all of the owner's signatures. Intended for test and reset
// flows, not the normal user path.
func (s *Signature) Clear(ctx context.Context, ownerID uuid.UUID) error {
	if err := s.store.Clear(ctx, ownerID); err != nil {
		return fmt.Errorf("could not clear signatures: %w", err)
	}
	return nil
}

func validateUpload(mimeType string, size int64, signatureType model.SignatureType) error {
	if !signatureType.Valid() {
		return model.ErrInvalidSignatureType
	}
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return model.ErrInvalidFormat
	}
	if size > MaxImageBytes {
		return model.ErrPayloadTooLarge
	}
	return nil
}

func encodeDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
