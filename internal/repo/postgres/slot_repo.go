package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amorim-studio/salon-bookings/internal/domain"
)

// SlotRepository owns the availability state machine for time slots. Every
// status mutation goes through Reserve or Release; there is no unconditional
// status write anywhere.
type SlotRepository interface {
	Create(ctx context.Context, serviceID string, date domain.Date, t domain.TimeOfDay) (*domain.TimeSlot, error)
	GetByID(ctx context.Context, id string) (*domain.TimeSlot, error)
	ListAvailable(ctx context.Context, serviceID string, from domain.Date) ([]domain.TimeSlot, error)
	List(ctx context.Context, limit, offset int) ([]domain.TimeSlot, error)
	Reserve(ctx context.Context, id string) error
	Release(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type slotRepository struct {
	pool *pgxpool.Pool
}

func NewSlotRepository(pool *pgxpool.Pool) SlotRepository {
	return &slotRepository{pool: pool}
}

const slotCols = `id, service_id, to_char(date, 'YYYY-MM-DD'), time, status, created_at, updated_at`

func scanSlot(row pgx.Row) (*domain.TimeSlot, error) {
	var s domain.TimeSlot
	err := row.Scan(&s.ID, &s.ServiceID, &s.Date, &s.Time, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *slotRepository) Create(ctx context.Context, serviceID string, date domain.Date, t domain.TimeOfDay) (*domain.TimeSlot, error) {
	const q = `INSERT INTO time_slots (service_id, date, time, status)
		VALUES ($1, $2, $3, 'available')
		RETURNING ` + slotCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	slot, err := scanSlot(r.pool.QueryRow(ctx, q, serviceID, string(date), string(t)))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotExists
		}
		return nil, err
	}
	return slot, nil
}

func (r *slotRepository) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	const q = `SELECT ` + slotCols + ` FROM time_slots WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	slot, err := scanSlot(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return slot, err
}

func (r *slotRepository) ListAvailable(ctx context.Context, serviceID string, from domain.Date) ([]domain.TimeSlot, error) {
	q := `SELECT ` + slotCols + ` FROM time_slots WHERE status='available'`
	args := []any{}
	if serviceID != "" {
		args = append(args, serviceID)
		q += ` AND service_id=$1`
	}
	if from != "" {
		args = append(args, string(from))
		if serviceID != "" {
			q += ` AND date >= $2`
		} else {
			q += ` AND date >= $1`
		}
	}
	q += ` ORDER BY date, time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSlots(rows)
}

func (r *slotRepository) List(ctx context.Context, limit, offset int) ([]domain.TimeSlot, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + slotCols + ` FROM time_slots ORDER BY date, time LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSlots(rows)
}

// Reserve transitions available -> booked with a conditional update. Under two
// concurrent callers exactly one UPDATE matches; the loser sees zero rows and
// gets ErrSlotUnavailable.
func (r *slotRepository) Reserve(ctx context.Context, id string) error {
	const q = `UPDATE time_slots SET status='booked', updated_at=now()
		WHERE id=$1 AND status='available'`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM time_slots WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrSlotUnavailable
}

// Release transitions booked -> available. Releasing an already-available
// slot is a no-op, so compensation and cancellation can both call it blindly.
func (r *slotRepository) Release(ctx context.Context, id string) error {
	const q = `UPDATE time_slots SET status='available', updated_at=now()
		WHERE id=$1 AND status='booked'`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, id)
	return err
}

// Delete removes a slot, refusing while it is booked.
func (r *slotRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM time_slots WHERE id=$1 AND status='available'`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM time_slots WHERE id=$1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrSlotBooked
}

func collectSlots(rows pgx.Rows) ([]domain.TimeSlot, error) {
	var slots []domain.TimeSlot
	for rows.Next() {
		var s domain.TimeSlot
		if err := rows.Scan(&s.ID, &s.ServiceID, &s.Date, &s.Time, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
