package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amorim-studio/salon-bookings/internal/domain"
)

// NotificationRepository is the reminder sweep's idempotence guard: a 'sent'
// row means that notification type already went out for that appointment and
// must not be sent again.
type NotificationRepository interface {
	HasSent(ctx context.Context, appointmentID string, ntype domain.NotificationType) (bool, error)
	Record(ctx context.Context, appointmentID string, ntype domain.NotificationType, status domain.NotificationStatus, detail string) error
	CleanupOrphaned(ctx context.Context) (int64, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) HasSent(ctx context.Context, appointmentID string, ntype domain.NotificationType) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM email_notifications
		WHERE appointment_id=$1 AND type=$2 AND status='sent'
	)`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var sent bool
	err := r.pool.QueryRow(ctx, q, appointmentID, string(ntype)).Scan(&sent)
	return sent, err
}

func (r *notificationRepository) Record(ctx context.Context, appointmentID string, ntype domain.NotificationType, status domain.NotificationStatus, detail string) error {
	const q = `INSERT INTO email_notifications (appointment_id, type, status, error)
		VALUES ($1, $2, $3, NULLIF($4, ''))`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.pool.Exec(ctx, q, appointmentID, string(ntype), string(status), detail)
	return err
}

// CleanupOrphaned drops log rows whose appointment no longer exists. The log
// references appointments by id without a foreign key so cancellation and the
// cleanup sweep can hard-delete appointments freely.
func (r *notificationRepository) CleanupOrphaned(ctx context.Context) (int64, error) {
	const q = `DELETE FROM email_notifications
		WHERE NOT EXISTS (SELECT 1 FROM appointments a WHERE a.id = email_notifications.appointment_id)
		AND created_at < now() - interval '7 days'`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
