package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"coachhub/internal/adapters/email"
	"coachhub/internal/adapters/identity"
	"coachhub/internal/adapters/storage"
	bookingStore "coachhub/internal/adapters/storage/booking"
	userStore "coachhub/internal/adapters/storage/user"
	"coachhub/internal/domain/audit"
	"coachhub/internal/domain/availability"
	"coachhub/internal/domain/booking"
	"coachhub/internal/domain/coach"
	"coachhub/internal/domain/coachservice"
	"coachhub/internal/domain/court"
	"coachhub/internal/domain/outbox"
	"coachhub/internal/domain/review"
	"coachhub/internal/domain/timeoff"
	"coachhub/internal/domain/user"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
}

// --- identity ---

type mockIdentity struct {
	users       map[string]identity.User // by email
	passwords   map[string]string
	signUpErr   error
	adminErr    error
	deleteErr   error
	deleted     []string
	resendToken string
	nextID      int
}

func newMockIdentity() *mockIdentity {
	return &mockIdentity{users: map[string]identity.User{}, passwords: map[string]string{}, resendToken: "resent-token"}
}

func (m *mockIdentity) add(email, password string, confirmed bool) identity.User {
	m.nextID++
	u := identity.User{ID: fmt.Sprintf("idp-%d", m.nextID), Email: email, EmailConfirmed: confirmed}
	m.users[email] = u
	m.passwords[email] = password
	return u
}

func (m *mockIdentity) SignUp(_ context.Context, req identity.SignUpRequest) (identity.User, error) {
	if m.signUpErr != nil {
		return identity.User{}, m.signUpErr
	}
	if _, ok := m.users[req.Email]; ok {
		return identity.User{}, identity.ErrUserExists
	}
	u := m.add(req.Email, req.Password, false)
	u.VerificationToken = "token-" + u.ID
	return u, nil
}

func (m *mockIdentity) SignIn(_ context.Context, email, password string) (identity.Session, error) {
	u, ok := m.users[email]
	if !ok || m.passwords[email] != password {
		return identity.Session{}, identity.ErrInvalidCredentials
	}
	if !u.EmailConfirmed {
		return identity.Session{}, identity.ErrEmailNotConfirmed
	}
	return identity.Session{AccessToken: "access-" + u.ID, ExpiresAt: fixedTime.Add(time.Hour), User: u}, nil
}

func (m *mockIdentity) VerifyEmail(_ context.Context, token string) error {
	for email, u := range m.users {
		if token == "token-"+u.ID {
			if u.EmailConfirmed {
				return identity.ErrAlreadyConfirmed
			}
			u.EmailConfirmed = true
			m.users[email] = u
			return nil
		}
	}
	return identity.ErrTokenInvalid
}

func (m *mockIdentity) ResendVerification(_ context.Context, email string) (string, error) {
	u, ok := m.users[email]
	if !ok {
		return "", identity.ErrUserNotFound
	}
	if u.EmailConfirmed {
		return "", identity.ErrAlreadyConfirmed
	}
	return m.resendToken, nil
}

func (m *mockIdentity) AdminCreateUser(_ context.Context, req identity.AdminCreateRequest) (identity.User, error) {
	if m.adminErr != nil {
		return identity.User{}, m.adminErr
	}
	if _, ok := m.users[req.Email]; ok {
		return identity.User{}, identity.ErrUserExists
	}
	return m.add(req.Email, req.Password, req.EmailConfirmed), nil
}

func (m *mockIdentity) AdminDeleteUser(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
		}
	}
	return nil
}

func (m *mockIdentity) FindUserByEmail(_ context.Context, email string) (identity.User, error) {
	u, ok := m.users[email]
	if !ok {
		return identity.User{}, identity.ErrUserNotFound
	}
	return u, nil
}

func (m *mockIdentity) ParseAccessToken(context.Context, string) (identity.Claims, error) {
	return identity.Claims{}, identity.ErrInvalidAccessToken
}

// --- profile stores ---

type mockUserStore struct {
	users     map[string]user.User
	createErr error

	// beforeCreate runs once at the start of the next Create.
	beforeCreate func()
}

func newMockUserStore(users ...user.User) *mockUserStore {
	m := &mockUserStore{users: map[string]user.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserStore) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, notFound("user " + id)
	}
	return u, nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, notFound("user " + email)
}

func (m *mockUserStore) Create(ctx context.Context, u user.User) error {
	if hook := m.beforeCreate; hook != nil {
		m.beforeCreate = nil
		hook()
	}
	if m.createErr != nil {
		return m.createErr
	}
	if _, err := m.GetByEmail(ctx, u.Email); err == nil {
		return userStore.ErrEmailTaken
	}
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Save(_ context.Context, u user.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockUserStore) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

type mockCoachStore struct {
	profiles  map[string]coach.Profile
	createErr error
}

func newMockCoachStore(profiles ...coach.Profile) *mockCoachStore {
	m := &mockCoachStore{profiles: map[string]coach.Profile{}}
	for _, p := range profiles {
		m.profiles[p.UserID] = p
	}
	return m
}

func (m *mockCoachStore) GetByUserID(_ context.Context, id string) (coach.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return coach.Profile{}, notFound("coach " + id)
	}
	return p, nil
}

func (m *mockCoachStore) Create(_ context.Context, p coach.Profile) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockCoachStore) Save(_ context.Context, p coach.Profile) error {
	m.profiles[p.UserID] = p
	return nil
}

func (m *mockCoachStore) SetRating(_ context.Context, id string, avg float64, count int) error {
	p, ok := m.profiles[id]
	if !ok {
		return notFound("coach " + id)
	}
	p.ApplyRating(avg, count)
	m.profiles[id] = p
	return nil
}

// --- catalog stores ---

type mockServiceStore struct {
	services  map[string]coachservice.Service
	deleteErr error
}

func newMockServiceStore(services ...coachservice.Service) *mockServiceStore {
	m := &mockServiceStore{services: map[string]coachservice.Service{}}
	for _, s := range services {
		m.services[s.ID] = s
	}
	return m
}

func (m *mockServiceStore) GetByID(_ context.Context, id string) (coachservice.Service, error) {
	s, ok := m.services[id]
	if !ok {
		return coachservice.Service{}, notFound("service " + id)
	}
	return s, nil
}

func (m *mockServiceStore) Save(_ context.Context, s coachservice.Service) error {
	m.services[s.ID] = s
	return nil
}

func (m *mockServiceStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.services, id)
	return nil
}

func (m *mockServiceStore) CountActive(_ context.Context, coachID string) (int, error) {
	n := 0
	for _, s := range m.services {
		if s.CoachID == coachID && s.Active {
			n++
		}
	}
	return n, nil
}

type mockCourtStore struct {
	courts map[string]court.Court
}

func (m *mockCourtStore) GetByID(_ context.Context, id string) (court.Court, error) {
	c, ok := m.courts[id]
	if !ok {
		return court.Court{}, notFound("court " + id)
	}
	return c, nil
}

type mockScheduleStore struct {
	windows map[string][]availability.Window
}

func (m *mockScheduleStore) ListByCoach(_ context.Context, coachID string) ([]availability.Window, error) {
	return m.windows[coachID], nil
}

type mockTimeOffList struct {
	away map[string][]timeoff.TimeOff
}

func (m *mockTimeOffList) ListByCoach(_ context.Context, coachID string) ([]timeoff.TimeOff, error) {
	return m.away[coachID], nil
}

// --- bookings ---

type mockBookingStore struct {
	mu       sync.Mutex
	bookings map[string]booking.Booking
	updates  int
}

func newMockBookingStore(bs ...booking.Booking) *mockBookingStore {
	m := &mockBookingStore{bookings: map[string]booking.Booking{}}
	for _, b := range bs {
		m.bookings[b.ID] = b
	}
	return m
}

func (m *mockBookingStore) GetByID(_ context.Context, id string) (booking.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return booking.Booking{}, notFound("booking " + id)
	}
	return b, nil
}

func (m *mockBookingStore) CreateIfNoConflict(_ context.Context, b booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.bookings {
		if !b.ConflictsWith(other) {
			continue
		}
		if other.CoachID == b.CoachID {
			return bookingStore.ErrSlotConflict
		}
		if b.CourtID != "" && other.CourtID == b.CourtID {
			return bookingStore.ErrCourtConflict
		}
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *mockBookingStore) UpdateStatus(_ context.Context, b booking.Booking, from string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.bookings[b.ID]
	if !ok {
		return notFound("booking " + b.ID)
	}
	if cur.Status != from {
		return bookingStore.ErrStaleStatus
	}
	m.bookings[b.ID] = b
	m.updates++
	return nil
}

func (m *mockBookingStore) CountActiveForService(_ context.Context, serviceID string) (int, error) {
	n := 0
	for _, b := range m.bookings {
		if b.ServiceID == serviceID && b.IsActive() {
			n++
		}
	}
	return n, nil
}

func (m *mockBookingStore) ListDue(_ context.Context, status, through string) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range m.bookings {
		if b.Status == status && b.Date <= through {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockReviewStore struct {
	reviews map[string]review.Review // by booking id
}

func (m *mockReviewStore) Create(_ context.Context, r review.Review) error {
	if _, ok := m.reviews[r.BookingID]; ok {
		return review.ErrAlreadyReviewed
	}
	m.reviews[r.BookingID] = r
	return nil
}

func (m *mockReviewStore) RatingFor(_ context.Context, coachID string) (float64, int, error) {
	sum, n := 0, 0
	for _, r := range m.reviews {
		if r.CoachID == coachID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return math.Round(float64(sum)/float64(n)*100) / 100, n, nil
}

// --- side effects ---

type mockAuditStore struct {
	events []audit.Event
}

func (m *mockAuditStore) Save(_ context.Context, e audit.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditStore) has(category audit.Category, action audit.Action) bool {
	for _, e := range m.events {
		if e.Category == category && e.Action == action {
			return true
		}
	}
	return false
}

type mockOutbox struct {
	entries map[string]outbox.Entry
	saveErr error
}

func newMockOutbox(entries ...outbox.Entry) *mockOutbox {
	m := &mockOutbox{entries: map[string]outbox.Entry{}}
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return m
}

func (m *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, notFound("outbox " + id)
	}
	return e, nil
}

func (m *mockOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if (e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying) && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockOutbox) byAction(action string) []outbox.Entry {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.ActionType == action {
			out = append(out, e)
		}
	}
	return out
}

type failingEmail struct{}

func (failingEmail) Send(context.Context, email.SendRequest) (email.SendResult, error) {
	return email.SendResult{}, errors.New("smtp down")
}

func (f failingEmail) SendBatch(ctx context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	return nil, errors.New("smtp down")
}

type recordingPublisher struct {
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	return nil
}

type recordingSMS struct {
	to []string
}

func (s *recordingSMS) Send(_ context.Context, to, _ string) (string, error) {
	s.to = append(s.to, to)
	return "SM1", nil
}

type mockDrafts struct {
	deleted []string
}

func (d *mockDrafts) Delete(_ context.Context, userID string) error {
	d.deleted = append(d.deleted, userID)
	return nil
}
