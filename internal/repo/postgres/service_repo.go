package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amorim-studio/salon-bookings/internal/domain"
)

type ServiceRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) (*domain.Service, error)
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	List(ctx context.Context) ([]domain.Service, error)
	Update(ctx context.Context, id string, req *domain.ServiceRequest) (*domain.Service, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

const serviceCols = `id, name, description, price, created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, req *domain.ServiceRequest) (*domain.Service, error) {
	const q = `INSERT INTO services (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Service
	err := r.pool.QueryRow(ctx, q, req.Name, req.Description, req.Price).Scan(
		&s.ID, &s.Name, &s.Description, &s.Price, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Service
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&s.ID, &s.Name, &s.Description, &s.Price, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) List(ctx context.Context) ([]domain.Service, error) {
	const q = `SELECT ` + serviceCols + ` FROM services ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

func (r *serviceRepository) Update(ctx context.Context, id string, req *domain.ServiceRequest) (*domain.Service, error) {
	const q = `UPDATE services
		SET name=$2, description=$3, price=$4, updated_at=now()
		WHERE id=$1
		RETURNING ` + serviceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var s domain.Service
	err := r.pool.QueryRow(ctx, q, id, req.Name, req.Description, req.Price).Scan(
		&s.ID, &s.Name, &s.Description, &s.Price, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *serviceRepository) Delete(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM services WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
