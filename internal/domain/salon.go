package domain

import "time"

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
)

type AppointmentStatus string

const (
	AppointmentActive AppointmentStatus = "active"
)

type NotificationType string

const (
	NotificationClientReminder    NotificationType = "client_reminder"
	NotificationAdminNotification NotificationType = "admin_notification"
)

type NotificationStatus string

const (
	NotificationSent   NotificationStatus = "sent"
	NotificationFailed NotificationStatus = "failed"
)

type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TimeSlot struct {
	ID        string     `json:"id"`
	ServiceID string     `json:"service_id"`
	Date      Date       `json:"date"`
	Time      TimeOfDay  `json:"time"`
	Status    SlotStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// StartsAt is the slot's start instant in the salon's location.
func (s *TimeSlot) StartsAt(loc *time.Location) time.Time {
	return StartTime(s.Date, s.Time, loc)
}

type Appointment struct {
	ID         string            `json:"id"`
	ClientID   string            `json:"client_id"`
	ServiceID  string            `json:"service_id"`
	TimeSlotID string            `json:"time_slot_id"`
	Status     AppointmentStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}

// AppointmentDetail is an appointment joined with its slot and service, the
// shape listings and the sweep jobs work with.
type AppointmentDetail struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	ServiceID   string    `json:"service_id"`
	ServiceName string    `json:"service_name"`
	TimeSlotID  string    `json:"time_slot_id"`
	Date        Date      `json:"date"`
	Time        TimeOfDay `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *AppointmentDetail) StartsAt(loc *time.Location) time.Time {
	return StartTime(a.Date, a.Time, loc)
}

// Profile is the client identity projection. Credentials live with the
// identity provider; email and phone are carried here so the reminder sweep
// can reach the client without calling back into the provider.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EmailNotification struct {
	ID            string             `json:"id"`
	AppointmentID string             `json:"appointment_id"`
	Type          NotificationType   `json:"type"`
	Status        NotificationStatus `json:"status"`
	Error         string             `json:"error,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

type SiteSetting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Well-known site_settings keys.
const (
	SettingAdminEmail = "admin_email"
	SettingInstagram  = "instagram_url"
	SettingWhatsApp   = "whatsapp_url"
)

// Requests

type BookAppointmentRequest struct {
	ServiceID  string `json:"service_id"`
	TimeSlotID string `json:"time_slot_id"`
}

type ServiceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

type CreateSlotRequest struct {
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type ProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
