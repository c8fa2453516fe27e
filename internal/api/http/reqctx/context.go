package reqctx

import (
	"context"

	"github.com/google/uuid"

	"github.com/cliniqa/clinicsign-server/internal/model"
)

type ctxKey int

const userIDKey ctxKey = iota

// Manager stores the authenticated user ID in request contexts.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

var _ model.ContextManager = (*Manager)(nil)

func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}
