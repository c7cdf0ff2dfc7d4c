package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"crownsync/internal/domain/session"
	"crownsync/internal/domain/user"
)

type SessionRepository struct {
	db  *Storage
	log *slog.Logger
}

var _ session.Repository = (*SessionRepository)(nil)

func NewSessionRepository(db *Storage, log *slog.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log,
	}
}

func (r *SessionRepository) Create(ctx context.Context, userID int, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at)
         VALUES ($1, decode($2, 'hex'), $3)`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string) (session.Principal, error) {
	var (
		p    session.Principal
		role string
	)
	err := r.db.Pool().QueryRow(ctx,
		`SELECT s.user_id, u.role FROM sessions s
         JOIN users u ON u.id = s.user_id
         WHERE s.token_hash = decode($1, 'hex') AND s.expires_at > NOW()`,
		tokenHash).Scan(&p.UserID, &role)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Principal{}, session.ErrInvalidSession
	}
	if err != nil {
		return session.Principal{}, fmt.Errorf("select session: %w", err)
	}

	p.Role = user.Role(role)
	return p, nil
}

// DeleteExpired удаляет просроченные сессии
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
