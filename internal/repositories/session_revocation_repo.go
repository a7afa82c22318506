package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BradenHooton/srm/internal/database"
)

// SessionRevocationRepository records logged-out session ids until the
// session would have expired anyway.
type SessionRevocationRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRevocationRepository(db *database.DB) *SessionRevocationRepository {
	return &SessionRevocationRepository{pool: db.Pool}
}

// RevokeSession blacklists jti. Revoking the same jti twice is a no-op.
func (r *SessionRevocationRepository) RevokeSession(ctx context.Context, jti, userID string, expiresAt time.Time, reason string) error {
	query := `
		INSERT INTO revoked_sessions (id, jti, user_id, expires_at, reason)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (jti) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, uuid.New().String(), jti, userID, expiresAt, reason)
	return database.MapPostgresError(err)
}

func (r *SessionRevocationRepository) IsSessionRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_sessions WHERE jti = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, jti).Scan(&exists); err != nil {
		return false, database.MapPostgresError(err)
	}

	return exists, nil
}

// CleanupExpiredSessions removes revocations whose session has expired.
func (r *SessionRevocationRepository) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	query := `DELETE FROM revoked_sessions WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, time.Now())
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}
