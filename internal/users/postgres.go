package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/typetrack/integration/database/pg"
)

const userColumns = `id, github_id, login, COALESCE(name, ''), COALESCE(email, ''), COALESCE(avatar_url, ''), created_at, updated_at`

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool, now: time.Now}
}

func (r *PGRepository) GetByGitHubID(ctx context.Context, githubID int64) (User, error) {
	rows, err := pg.Querier(ctx, r.pool).Query(ctx, `SELECT `+userColumns+` FROM users WHERE github_id = $1`, githubID)
	if err != nil {
		return User{}, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if pg.IsNotFoundError(err) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PGRepository) Upsert(ctx context.Context, p Profile) (User, error) {
	if err := p.validate(); err != nil {
		return User{}, err
	}
	now := r.now().UTC().Truncate(time.Microsecond)
	rows, err := pg.Querier(ctx, r.pool).Query(ctx, `INSERT INTO users (id, github_id, login, name, email, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $7)
		ON CONFLICT (github_id) DO UPDATE SET
			login = EXCLUDED.login,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
		RETURNING `+userColumns,
		uuid.New(), p.GitHubID, p.Login, p.Name, p.Email, p.AvatarURL, now,
	)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectExactlyOneRow(rows, scanUser)
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.GitHubID, &u.Login, &u.Name, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
