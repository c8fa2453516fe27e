package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SignatureType classifies whose handwritten signature an uploaded image is.
type SignatureType string

const (
	// SignatureTypeTherapist is the treating therapist's signature.
	SignatureTypeTherapist SignatureType = "therapist"
	// SignatureTypeSupervisor is the clinical supervisor's signature.
	SignatureTypeSupervisor SignatureType = "supervisor"
	// SignatureTypeMedicalDirector is the medical director's signature.
	SignatureTypeMedicalDirector SignatureType = "medical_director"
)

// Valid reports whether t is a known signature type.
func (t SignatureType) Valid() bool {
	switch t {
	case SignatureTypeTherapist, SignatureTypeSupervisor, SignatureTypeMedicalDirector:
		return true
	}
	return false
}

// Signature represents a stored signature image owned by a user.
// ImageData is a data-URL encoded image payload.
type Signature struct {
	ID         uuid.UUID
	OwnerID    uuid.UUID
	Type       SignatureType
	ImageData  string
	UploadedAt time.Time
}

// SignatureStore defines persistence operations for signatures.
//
// Upsert must replace any existing signature of the same (owner, type)
// pair in a single store operation, so at most one signature per type
// exists for an owner at any time.
type SignatureStore interface {
	Upsert(ctx context.Context, signature Signature) (Signature, error)
	GetByID(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) (Signature, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Signature, error)
	GetByOwnerIDAndType(ctx context.Context, ownerID uuid.UUID, signatureType SignatureType) (Signature, error)
	Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error
	Clear(ctx context.Context, ownerID uuid.UUID) error
}

// UploadParams contains parameters to upload a signature image.
type UploadParams struct {
	OwnerID  uuid.UUID
	Type     SignatureType
	MimeType string
	Size     int64
	Data     []byte
}
