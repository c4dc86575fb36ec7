package adaptor

import (
	"context"
	"iter"
	"net/http"

	"bus-tracker/internal/data/entity"
	"bus-tracker/internal/dto/request"
	"bus-tracker/internal/dto/response"
	"bus-tracker/internal/usecase"
	"bus-tracker/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockBookingService struct{ mock.Mock }

func (m *mockBookingService) ClaimSeat(ctx context.Context, tripID string, userID uuid.UUID, seatCode string) (*usecase.BookingResult, error) {
	args := m.Called(ctx, tripID, userID, seatCode)
	result, _ := args.Get(0).(*usecase.BookingResult)
	return result, args.Error(1)
}

func (m *mockBookingService) ListBookedSeats(ctx context.Context, tripID string) ([]string, error) {
	args := m.Called(ctx, tripID)
	seats, _ := args.Get(0).([]string)
	return seats, args.Error(1)
}

func (m *mockBookingService) BookedSeats(ctx context.Context, tripID string) ([]string, error) {
	args := m.Called(ctx, tripID)
	seats, _ := args.Get(0).([]string)
	return seats, args.Error(1)
}

func (m *mockBookingService) ExistingBooking(ctx context.Context, tripID string, userID uuid.UUID) (*entity.SeatBooking, error) {
	args := m.Called(ctx, tripID, userID)
	booking, _ := args.Get(0).(*entity.SeatBooking)
	return booking, args.Error(1)
}

func (m *mockBookingService) BookingPage(ctx context.Context, tripID string, userID uuid.UUID) (*usecase.BookingPage, error) {
	args := m.Called(ctx, tripID, userID)
	page, _ := args.Get(0).(*usecase.BookingPage)
	return page, args.Error(1)
}

func (m *mockBookingService) ClearAllBookings(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockTripService struct{ mock.Mock }

func (m *mockTripService) ListTrips(ctx context.Context) iter.Seq2[*entity.Trip, error] {
	args := m.Called(ctx)
	trips, _ := args.Get(0).([]*entity.Trip)
	failure := args.Error(1)
	return func(yield func(*entity.Trip, error) bool) {
		for _, trip := range trips {
			if !yield(trip, nil) {
				return
			}
		}
		if failure != nil {
			yield(nil, failure)
		}
	}
}

func (m *mockTripService) GetTrip(ctx context.Context, tripID string) (*entity.Trip, error) {
	args := m.Called(ctx, tripID)
	trip, _ := args.Get(0).(*entity.Trip)
	return trip, args.Error(1)
}

func (m *mockTripService) EnsureSeedTrips(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockTripService) CreateTrip(ctx context.Context, req *request.CreateTripRequest) (*entity.Trip, error) {
	args := m.Called(ctx, req)
	trip, _ := args.Get(0).(*entity.Trip)
	return trip, args.Error(1)
}

func (m *mockTripService) SetActive(ctx context.Context, tripID string, active bool) (*entity.Trip, error) {
	args := m.Called(ctx, tripID, active)
	trip, _ := args.Get(0).(*entity.Trip)
	return trip, args.Error(1)
}

func (m *mockTripService) DeleteTrip(ctx context.Context, tripID string) error {
	return m.Called(ctx, tripID).Error(0)
}

type mockLocationService struct{ mock.Mock }

func (m *mockLocationService) Record(ctx context.Context, req *request.RecordLocationRequest) (*entity.BusLocation, error) {
	args := m.Called(ctx, req)
	location, _ := args.Get(0).(*entity.BusLocation)
	return location, args.Error(1)
}

func (m *mockLocationService) Latest(ctx context.Context) (*entity.BusLocation, error) {
	args := m.Called(ctx)
	location, _ := args.Get(0).(*entity.BusLocation)
	return location, args.Error(1)
}

// asUser stands in for AuthSession in handler tests.
func asUser(userID uuid.UUID, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := utils.SetIdentity(r.Context(), utils.Identity{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newRouter() *chi.Mux {
	return chi.NewRouter()
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *request.UpdateProfileRequest) (*response.UserResponse, error) {
	args := m.Called(ctx, userID, req)
	user, _ := args.Get(0).(*response.UserResponse)
	return user, args.Error(1)
}

func (m *mockUserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentToken string, req *request.ChangePasswordRequest) error {
	return m.Called(ctx, userID, currentToken, req).Error(0)
}

// withToken puts the bearer token where AuthSession would.
func withToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(utils.SetTokenContext(r.Context(), token)))
		})
	}
}
