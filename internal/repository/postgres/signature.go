package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cliniqa/clinicsign-server/internal/model"
)

var _ model.SignatureStore = (*SignatureRepository)(nil)

// SignatureRepository stores signatures in postgres. The one-per-type rule
// is enforced by the UNIQUE (owner_id, signature_type) index, so an upload
// that supersedes an earlier signature is a single upsert statement.
type SignatureRepository struct {
	db *Connection
}

func NewSignatureRepository(db *Connection) *SignatureRepository {
	return &SignatureRepository{
		db: db,
	}
}

func (r *SignatureRepository) Upsert(ctx context.Context, signature model.Signature) (model.Signature, error) {
	query := `
		INSERT INTO signatures (id, owner_id, signature_type, image_data, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, signature_type)
		DO UPDATE SET id = EXCLUDED.id, image_data = EXCLUDED.image_data, uploaded_at = EXCLUDED.uploaded_at
		RETURNING id, owner_id, signature_type, image_data, uploaded_at`

	var saved model.Signature
	err := r.db.QueryRow(ctx, query,
		signature.ID, signature.OwnerID, string(signature.Type), signature.ImageData, signature.UploadedAt,
	).Scan(
		&saved.ID, &saved.OwnerID, &saved.Type, &saved.ImageData, &saved.UploadedAt,
	)
	if err != nil {
		return model.Signature{}, fmt.Errorf("failed to upsert signature: %w", err)
	}

	return saved, nil
}

func (r *SignatureRepository) GetByID(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) (model.Signature, error) {
	query := `
		SELECT id, owner_id, signature_type, image_data, uploaded_at
		FROM signatures WHERE id = $1 AND owner_id = $2`

	var signature model.Signature
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&signature.ID, &signature.OwnerID, &signature.Type, &signature.ImageData, &signature.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Signature{}, model.ErrNotFound
		}
		return model.Signature{}, fmt.Errorf("failed to get signature by id: %w", err)
	}

	return signature, nil
}

func (r *SignatureRepository) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.Signature, error) {
	query := `
		SELECT id, owner_id, signature_type, image_data, uploaded_at
		FROM signatures
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures by owner id: %w", err)
	}
	defer rows.Close()

	var signatures []model.Signature
	for rows.Next() {
		var signature model.Signature
		err := rows.Scan(
			&signature.ID, &signature.OwnerID, &signature.Type, &signature.ImageData, &signature.UploadedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signature row: %w", err)
		}
		signatures = append(signatures, signature)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return signatures, nil
}

func (r *SignatureRepository) GetByOwnerIDAndType(ctx context.Context, ownerID uuid.UUID, signatureType model.SignatureType) (model.Signature, error) {
	query := `
		SELECT id, owner_id, signature_type, image_data, uploaded_at
		FROM signatures
		WHERE owner_id = $1 AND signature_type = $2`

	var signature model.Signature
	err := r.db.QueryRow(ctx, query, ownerID, string(signatureType)).Scan(
		&signature.ID, &signature.OwnerID, &signature.Type, &signature.ImageData, &signature.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Signature{}, model.ErrNotFound
		}
		return model.Signature{}, fmt.Errorf("failed to get signature by owner id and type: %w", err)
	}

	return signature, nil
}

// Delete removes the signature with the given id for the owner. Deleting an
// id that does not exist is a no-op.
func (r *SignatureRepository) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	const query = `DELETE FROM signatures WHERE id = $1 AND owner_id = $2`
	if _, err := r.db.Exec(ctx, query, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete signature: %w", err)
	}
	return nil
}

func (r *SignatureRepository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	const query = `DELETE FROM signatures WHERE owner_id = $1`
	if _, err := r.db.Exec(ctx, query, ownerID); err != nil {
		return fmt.Errorf("failed to clear signatures: %w", err)
	}
	return nil
}
