package usecase

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"
	"time"

	"bus-tracker/internal/data/entity"
	"bus-tracker/internal/data/repository"
	"bus-tracker/internal/notify"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// memStore backs the trip and booking fakes. It enforces the same two
// uniqueness rules as the partial indexes in the schema.
type memStore struct {
	mu       sync.Mutex
	trips    map[uuid.UUID]*entity.Trip
	bookings []*entity.SeatBooking

	createErr error
}

func newMemStore() *memStore {
	return &memStore{trips: map[uuid.UUID]*entity.Trip{}}
}

type memTrips struct{ s *memStore }

func (r memTrips) Create(_ context.Context, trip *entity.Trip) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *trip
	r.s.trips[trip.ID] = &copied
	return nil
}

func (r memTrips) FindByID(_ context.Context, id uuid.UUID) (*entity.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trip, ok := r.s.trips[id]
	if !ok {
		return nil, nil
	}
	copied := *trip
	return &copied, nil
}

func (r memTrips) All(_ context.Context) iter.Seq2[*entity.Trip, error] {
	return func(yield func(*entity.Trip, error) bool) {
		r.s.mu.Lock()
		trips := make([]*entity.Trip, 0, len(r.s.trips))
		for _, trip := range r.s.trips {
			copied := *trip
			trips = append(trips, &copied)
		}
		r.s.mu.Unlock()

		slices.SortFunc(trips, func(a, b *entity.Trip) int {
			return cmp.Or(
				a.Date.Compare(b.Date),
				cmp.Compare(a.DepartureTime, b.DepartureTime),
				a.CreatedAt.Compare(b.CreatedAt),
			)
		})
		for _, trip := range trips {
			if !yield(trip, nil) {
				return
			}
		}
	}
}

func (r memTrips) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.trips)), nil
}

func (r memTrips) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trip, ok := r.s.trips[id]
	if !ok {
		return repository.ErrNotFound
	}
	trip.IsActive = active
	return nil
}

func (r memTrips) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.trips[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.trips, id)
	r.s.bookings = slices.DeleteFunc(r.s.bookings, func(b *entity.SeatBooking) bool {
		return b.TripID == id
	})
	return nil
}

func (r memTrips) EnsureSeeded(_ context.Context, trips []*entity.Trip) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if len(r.s.trips) > 0 {
		return 0, nil
	}
	for _, trip := range trips {
		copied := *trip
		r.s.trips[trip.ID] = &copied
	}
	return len(trips), nil
}

type memBookings struct{ s *memStore }

func (r memBookings) Create(_ context.Context, booking *entity.SeatBooking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.createErr != nil {
		return r.s.createErr
	}
	if _, ok := r.s.trips[booking.TripID]; !ok {
		return repository.ErrNotFound
	}
	for _, b := range r.s.bookings {
		if b.TripID != booking.TripID || b.Status == entity.BookingStatusCancelled {
			continue
		}
		if b.SeatNumber == booking.SeatNumber {
			return repository.ErrSeatConflict
		}
		if b.UserID == booking.UserID {
			return repository.ErrUserConflict
		}
	}

	copied := *booking
	r.s.bookings = append(r.s.bookings, &copied)
	return nil
}

func (r memBookings) FindByID(_ context.Context, id uuid.UUID) (*entity.SeatBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memBookings) FindActiveByTripAndUser(_ context.Context, tripID, userID uuid.UUID) (*entity.SeatBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.TripID == tripID && b.UserID == userID && b.Status != entity.BookingStatusCancelled {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (r memBookings) FindBookedSeatNumbers(_ context.Context, tripID uuid.UUID) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seats := []string{}
	for _, b := range r.s.bookings {
		if b.TripID == tripID && b.Status != entity.BookingStatusCancelled {
			seats = append(seats, b.SeatNumber)
		}
	}
	return seats, nil
}

func (r memBookings) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.SeatBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SeatBooking
	for _, b := range r.s.bookings {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r memBookings) DeleteAll(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.bookings))
	r.s.bookings = nil
	return n, nil
}

func (s *memStore) addTrip(name string, date time.Time, active bool) *entity.Trip {
	trip := &entity.Trip{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Name:          name,
		Date:          date,
		DepartureTime: entity.DefaultDepartureTime,
		TotalSeats:    entity.DefaultTotalSeats,
		SeatsPerRow:   entity.DefaultSeatsPerRow,
		IsActive:      active,
	}
	s.mu.Lock()
	s.trips[trip.ID] = trip
	s.mu.Unlock()
	return trip
}

func (s *memStore) repository() *repository.Repository {
	return &repository.Repository{
		Trip:        memTrips{s},
		SeatBooking: memBookings{s},
	}
}

// recordingNotifier captures dispatched confirmations.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.BookingConfirmed
}

func (n *recordingNotifier) Dispatch(event notify.BookingConfirmed) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestTripService(repo *repository.Repository, now time.Time) *tripService {
	return &tripService{repo: repo, now: fixedClock(now), log: zap.NewNop()}
}

// ---- testify mocks for the auth and location paths ----

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

type mockSessionRepo struct{ mock.Mock }

func (m *mockSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	args := m.Called(ctx, token)
	session, _ := args.Get(0).(*entity.Session)
	return session, args.Error(1)
}

func (m *mockSessionRepo) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockSessionRepo) RevokeOtherSessions(ctx context.Context, userID uuid.UUID, keep uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, keep)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockSessionRepo) CleanExpiredSessions(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockLocationRepo struct{ mock.Mock }

func (m *mockLocationRepo) Create(ctx context.Context, location *entity.BusLocation) error {
	return m.Called(ctx, location).Error(0)
}

func (m *mockLocationRepo) FindLatest(ctx context.Context) (*entity.BusLocation, error) {
	args := m.Called(ctx)
	location, _ := args.Get(0).(*entity.BusLocation)
	return location, args.Error(1)
}
