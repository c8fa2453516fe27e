//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cliniqa/clinicsign-server/internal/model"
	repo "github.com/cliniqa/clinicsign-server/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "clinicsign_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/clinicsign_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ur := repo.NewUserRepository(conn)
	owner := model.User{
		ID:           uuid.New(),
		Email:        "therapist@clinic.example",
		PasswordHash: []byte("$2a$10$fakefakefakefakefakefake"),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	t.Run("user_repository", func(t *testing.T) {
		saved, err := ur.Create(ctx, owner)
		require.NoError(t, err)
		require.Equal(t, owner.ID, saved.ID)

		byEmail, err := ur.GetByEmail(ctx, owner.Email)
		require.NoError(t, err)
		require.Equal(t, owner.ID, byEmail.ID)

		byID, err := ur.GetByID(ctx, owner.ID)
		require.NoError(t, err)
		require.Equal(t, owner.Email, byID.Email)

		_, err = ur.GetByEmail(ctx, "nobody@clinic.example")
		require.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("signature_repository", func(t *testing.T) {
		sr := repo.NewSignatureRepository(conn)

		first := model.Signature{
			ID:         uuid.New(),
			OwnerID:    owner.ID,
			Type:       model.SignatureTypeTherapist,
			ImageData:  "data:image/png;base64,Zmlyc3Q=",
			UploadedAt: time.Now().UTC(),
		}
		saved, err := sr.Upsert(ctx, first)
		require.NoError(t, err)
		require.Equal(t, first.ID, saved.ID)

		// Second upload of the same type replaces the first row.
		second := model.Signature{
			ID:         uuid.New(),
			OwnerID:    owner.ID,
			Type:       model.SignatureTypeTherapist,
			ImageData:  "data:image/png;base64,c2Vjb25k",
			UploadedAt: time.Now().UTC(),
		}
		_, err = sr.Upsert(ctx, second)
		require.NoError(t, err)

		all, err := sr.GetByOwnerID(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.Equal(t, second.ID, all[0].ID)

		_, err = sr.GetByID(ctx, owner.ID, first.ID)
		require.ErrorIs(t, err, model.ErrNotFound)

		byType, err := sr.GetByOwnerIDAndType(ctx, owner.ID, model.SignatureTypeTherapist)
		require.NoError(t, err)
		require.Equal(t, second.ID, byType.ID)

		// Unknown id delete is a no-op.
		require.NoError(t, sr.Delete(ctx, owner.ID, uuid.New()))

		require.NoError(t, sr.Delete(ctx, owner.ID, second.ID))
		all, err = sr.GetByOwnerID(ctx, owner.ID)
		require.NoError(t, err)
		require.Empty(t, all)

		_, err = sr.Upsert(ctx, first)
		require.NoError(t, err)
		require.NoError(t, sr.Clear(ctx, owner.ID))
		all, err = sr.GetByOwnerID(ctx, owner.ID)
		require.NoError(t, err)
		require.Empty(t, all)
	})

	t.Run("refresh_token_repository", func(t *testing.T) {
		rr := repo.NewRefreshTokenRepository(conn)

		now := time.Now()
		rt := model.RefreshToken{
			ID:        uuid.New(),
			JTI:       uuid.NewString(),
			UserID:    owner.ID,
			TokenHash: []byte("hash"),
			IssuedAt:  now,
			ExpiresAt: now.Add(time.Hour),
		}
		require.NoError(t, rr.Create(ctx, rt))

		got, err := rr.GetByJTI(ctx, rt.JTI)
		require.NoError(t, err)
		require.Equal(t, rt.UserID, got.UserID)
		require.Nil(t, got.RevokedAt)

		require.NoError(t, rr.RevokeByJTI(ctx, rt.JTI))
		got, err = rr.GetByJTI(ctx, rt.JTI)
		require.NoError(t, err)
		require.NotNil(t, got.RevokedAt)
	})
}
