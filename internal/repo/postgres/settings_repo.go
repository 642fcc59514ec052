package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amorim-studio/salon-bookings/internal/domain"
)

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) (*domain.SiteSetting, error)
	List(ctx context.Context) ([]domain.SiteSetting, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT value FROM site_settings WHERE key=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var value string
	err := r.pool.QueryRow(ctx, q, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *settingsRepository) Set(ctx context.Context, key, value string) (*domain.SiteSetting, error) {
	const q = `INSERT INTO site_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
		RETURNING key, value, updated_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.SiteSetting
	if err := r.pool.QueryRow(ctx, q, key, value).Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) List(ctx context.Context) ([]domain.SiteSetting, error) {
	const q = `SELECT key, value, updated_at FROM site_settings ORDER BY key`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []domain.SiteSetting
	for rows.Next() {
		var s domain.SiteSetting
		if err := rows.Scan(&s.Key, &s.Value, &s.UpdatedAt); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}
