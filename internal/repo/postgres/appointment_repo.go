package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amorim-studio/salon-bookings/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, clientID, serviceID, slotID string) (*domain.Appointment, error)
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	// DeleteActive removes an active appointment and reports the slot it was
	// holding. ok=false means there was nothing active to remove.
	DeleteActive(ctx context.Context, id string) (slotID string, ok bool, err error)
	ListByClient(ctx context.Context, clientID string) ([]domain.AppointmentDetail, error)
	ListActive(ctx context.Context) ([]domain.AppointmentDetail, error)
	List(ctx context.Context, limit, offset int) ([]domain.AppointmentDetail, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentCols = `id, client_id, service_id, time_slot_id, status, created_at`

const appointmentDetailQuery = `
	SELECT a.id, a.client_id, a.service_id, s.name, a.time_slot_id,
		to_char(ts.date, 'YYYY-MM-DD'), ts.time, a.created_at
	FROM appointments a
	JOIN time_slots ts ON ts.id = a.time_slot_id
	JOIN services s ON s.id = a.service_id`

// Create inserts an active appointment bound to the slot. The partial unique
// index on (time_slot_id) WHERE status='active' is the backstop: if another
// writer slipped in between the reservation and this insert, the insert fails
// with a unique violation and the caller compensates.
func (r *appointmentRepository) Create(ctx context.Context, clientID, serviceID, slotID string) (*domain.Appointment, error) {
	const q = `INSERT INTO appointments (id, client_id, service_id, time_slot_id, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING ` + appointmentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Appointment
	err := r.pool.QueryRow(ctx, q, uuid.NewString(), clientID, serviceID, slotID).Scan(
		&a.ID, &a.ClientID, &a.ServiceID, &a.TimeSlotID, &a.Status, &a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrSlotUnavailable
		}
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	const q = `SELECT ` + appointmentCols + ` FROM appointments WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var a domain.Appointment
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.ClientID, &a.ServiceID, &a.TimeSlotID, &a.Status, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepository) DeleteActive(ctx context.Context, id string) (string, bool, error) {
	const q = `DELETE FROM appointments WHERE id=$1 AND status='active' RETURNING time_slot_id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var slotID string
	err := r.pool.QueryRow(ctx, q, id).Scan(&slotID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return slotID, true, nil
}

func (r *appointmentRepository) ListByClient(ctx context.Context, clientID string) ([]domain.AppointmentDetail, error) {
	q := appointmentDetailQuery + ` WHERE a.client_id=$1 AND a.status='active' ORDER BY ts.date, ts.time`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointmentDetails(rows)
}

func (r *appointmentRepository) ListActive(ctx context.Context) ([]domain.AppointmentDetail, error) {
	q := appointmentDetailQuery + ` WHERE a.status='active' ORDER BY ts.date, ts.time`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointmentDetails(rows)
}

func (r *appointmentRepository) List(ctx context.Context, limit, offset int) ([]domain.AppointmentDetail, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := appointmentDetailQuery + ` ORDER BY a.created_at DESC LIMIT $1 OFFSET $2`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointmentDetails(rows)
}

func collectAppointmentDetails(rows pgx.Rows) ([]domain.AppointmentDetail, error) {
	var appts []domain.AppointmentDetail
	for rows.Next() {
		var a domain.AppointmentDetail
		if err := rows.Scan(
			&a.ID, &a.ClientID, &a.ServiceID, &a.ServiceName,
			&a.TimeSlotID, &a.Date, &a.Time, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}
