package sweep_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amorim-studio/salon-bookings/internal/domain"
)

// In-memory store shared by the job fakes. A single mutex keeps the invariant
// checks in tests honest when a job mutates several tables per item.
type store struct {
	mu            sync.Mutex
	slots         map[string]domain.SlotStatus
	appts         map[string]domain.AppointmentDetail
	profiles      map[string]domain.Profile
	notifications map[string]domain.NotificationStatus // key appointmentID|type
	settings      map[string]string

	deleteErrs  map[string]error // per-appointment injected DeleteActive failures
	releaseErr  error
	orphanCount int64
}

func newStore() *store {
	return &store{
		slots:         make(map[string]domain.SlotStatus),
		appts:         make(map[string]domain.AppointmentDetail),
		profiles:      make(map[string]domain.Profile),
		notifications: make(map[string]domain.NotificationStatus),
		settings:      make(map[string]string),
		deleteErrs:    make(map[string]error),
	}
}

func (s *store) addAppointment(clientID string, startsAt time.Time, loc *time.Location) domain.AppointmentDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	local := startsAt.In(loc)
	a := domain.AppointmentDetail{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		ServiceID:   "svc-1",
		ServiceName: "Volume Russo",
		TimeSlotID:  uuid.NewString(),
		Date:        domain.Date(local.Format("2006-01-02")),
		Time:        domain.TimeOfDay(local.Format("15:04")),
		CreatedAt:   time.Now(),
	}
	s.appts[a.ID] = a
	s.slots[a.TimeSlotID] = domain.SlotBooked
	return a
}

func (s *store) addProfile(userID, name, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = domain.Profile{UserID: userID, Name: name, Email: email, Phone: "+55 11 99999-0000"}
}

func (s *store) hasAppointment(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.appts[id]
	return ok
}

func (s *store) slotStatus(id string) domain.SlotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[id]
}

func notifKey(appointmentID string, ntype domain.NotificationType) string {
	return appointmentID + "|" + string(ntype)
}

// fakeAppointments implements postgres.AppointmentRepository over the store.
type fakeAppointments struct{ s *store }

func (f *fakeAppointments) Create(context.Context, string, string, string) (*domain.Appointment, error) {
	return nil, errors.New("not used")
}

func (f *fakeAppointments) GetByID(context.Context, string) (*domain.Appointment, error) {
	return nil, errors.New("not used")
}

func (f *fakeAppointments) DeleteActive(_ context.Context, id string) (string, bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.deleteErrs[id]; err != nil {
		return "", false, err
	}
	a, ok := f.s.appts[id]
	if !ok {
		return "", false, nil
	}
	delete(f.s.appts, id)
	return a.TimeSlotID, true, nil
}

func (f *fakeAppointments) ListByClient(context.Context, string) ([]domain.AppointmentDetail, error) {
	return nil, errors.New("not used")
}

func (f *fakeAppointments) ListActive(context.Context) ([]domain.AppointmentDetail, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := make([]domain.AppointmentDetail, 0, len(f.s.appts))
	for _, a := range f.s.appts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeAppointments) List(context.Context, int, int) ([]domain.AppointmentDetail, error) {
	return nil, errors.New("not used")
}

// fakeSlots implements postgres.SlotRepository; the sweep jobs only release.
type fakeSlots struct{ s *store }

func (f *fakeSlots) Create(context.Context, string, domain.Date, domain.TimeOfDay) (*domain.TimeSlot, error) {
	return nil, errors.New("not used")
}

func (f *fakeSlots) GetByID(context.Context, string) (*domain.TimeSlot, error) {
	return nil, errors.New("not used")
}

func (f *fakeSlots) ListAvailable(context.Context, string, domain.Date) ([]domain.TimeSlot, error) {
	return nil, errors.New("not used")
}

func (f *fakeSlots) List(context.Context, int, int) ([]domain.TimeSlot, error) {
	return nil, errors.New("not used")
}

func (f *fakeSlots) Reserve(context.Context, string) error { return errors.New("not used") }

func (f *fakeSlots) Release(_ context.Context, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.releaseErr != nil {
		return f.s.releaseErr
	}
	if _, ok := f.s.slots[id]; ok {
		f.s.slots[id] = domain.SlotAvailable
	}
	return nil
}

func (f *fakeSlots) Delete(context.Context, string) error { return errors.New("not used") }

type fakeNotifications struct {
	s         *store
	recordErr error
}

func (f *fakeNotifications) HasSent(_ context.Context, appointmentID string, ntype domain.NotificationType) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return f.s.notifications[notifKey(appointmentID, ntype)] == domain.NotificationSent, nil
}

func (f *fakeNotifications) Record(_ context.Context, appointmentID string, ntype domain.NotificationType, status domain.NotificationStatus, _ string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.recordErr != nil {
		return f.recordErr
	}
	f.s.notifications[notifKey(appointmentID, ntype)] = status
	return nil
}

func (f *fakeNotifications) CleanupOrphaned(context.Context) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	n := f.s.orphanCount
	f.s.orphanCount = 0
	return n, nil
}

type fakeProfiles struct{ s *store }

func (f *fakeProfiles) Upsert(context.Context, *domain.Profile) (*domain.Profile, error) {
	return nil, errors.New("not used")
}

func (f *fakeProfiles) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProfiles) List(context.Context, int, int) ([]domain.Profile, error) {
	return nil, errors.New("not used")
}

func (f *fakeProfiles) Delete(context.Context, string) (bool, error) {
	return false, errors.New("not used")
}

type fakeSettings struct{ s *store }

func (f *fakeSettings) Get(_ context.Context, key string) (string, bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	v, ok := f.s.settings[key]
	return v, ok, nil
}

func (f *fakeSettings) Set(context.Context, string, string) (*domain.SiteSetting, error) {
	return nil, errors.New("not used")
}

func (f *fakeSettings) List(context.Context) ([]domain.SiteSetting, error) {
	return nil, errors.New("not used")
}

// fakeMailer implements mailer.Service and records every send. failFor makes
// sends to that address fail.
type fakeMailer struct {
	mu      sync.Mutex
	sends   []sentMail
	failFor string
}

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

func (f *fakeMailer) Send(toEmail, _, subject, _, html string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor != "" && toEmail == f.failFor {
		return "", fmt.Errorf("smtp: rejected recipient %s", toEmail)
	}
	f.sends = append(f.sends, sentMail{To: toEmail, Subject: subject, HTML: html})
	return uuid.NewString(), nil
}

func (f *fakeMailer) sentTo(email string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sends {
		if s.To == email {
			n++
		}
	}
	return n
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (f *fakePublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subjects = append(f.subjects, subject)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) count(subject string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subjects {
		if s == subject {
			n++
		}
	}
	return n
}
