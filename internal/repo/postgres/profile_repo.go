package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amorim-studio/salon-bookings/internal/domain"
)

type ProfileRepository interface {
	Upsert(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]domain.Profile, error)
	Delete(ctx context.Context, userID string) (bool, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileCols = `user_id, name, email, phone, created_at, updated_at`

func (r *profileRepository) Upsert(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	const q = `INSERT INTO profiles (user_id, name, email, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET name=EXCLUDED.name, email=EXCLUDED.email, phone=EXCLUDED.phone, updated_at=now()
		RETURNING ` + profileCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.Profile
	err := r.pool.QueryRow(ctx, q, p.UserID, p.Name, p.Email, p.Phone).Scan(
		&out.UserID, &out.Name, &out.Email, &out.Phone, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	const q = `SELECT ` + profileCols + ` FROM profiles WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Profile
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&p.UserID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + profileCols + ` FROM profiles ORDER BY name LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.UserID, &p.Name, &p.Email, &p.Phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) Delete(ctx context.Context, userID string) (bool, error) {
	const q = `DELETE FROM profiles WHERE user_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	result, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
