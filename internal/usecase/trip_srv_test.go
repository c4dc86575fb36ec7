package usecase

import (
	"context"
	"sync"
	"testing"

	"bus-tracker/internal/data/entity"
	"bus-tracker/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectNames(t *testing.T, svc TripService) []string {
	t.Helper()
	var names []string
	for trip, err := range svc.ListTrips(context.Background()) {
		require.NoError(t, err)
		names = append(names, trip.Name)
	}
	return names
}

func TestEnsureSeedTripsRunsOnce(t *testing.T) {
	store := newMemStore()
	svc := newTestTripService(store.repository(), testNow)

	var wg sync.WaitGroup
	created := make([]int, 8)
	for i := range created {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.EnsureSeedTrips(context.Background())
			assert.NoError(t, err)
			created[i] = n
		}()
	}
	wg.Wait()

	total := 0
	for _, n := range created {
		total += n
	}
	assert.Equal(t, 2, total)
	assert.ElementsMatch(t, []string{"Ronobheri", "Bhorer Alo"}, collectNames(t, svc))

	for trip, err := range svc.ListTrips(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, dateOnly(testNow), trip.Date)
		assert.Equal(t, entity.DefaultTotalSeats, trip.TotalSeats)
		assert.True(t, trip.AcceptsBookings(testNow))
	}
}

func TestListTripsOrderAndRestart(t *testing.T) {
	store := newMemStore()
	svc := newTestTripService(store.repository(), testNow)
	today := dateOnly(testNow)

	late := store.addTrip("Evening", today, true)
	late.DepartureTime = "18:00"
	store.addTrip("Tomorrow", today.AddDate(0, 0, 1), true)
	store.addTrip("Morning", today, true)

	want := []string{"Morning", "Evening", "Tomorrow"}
	assert.Equal(t, want, collectNames(t, svc))

	store.addTrip("Yesterday", today.AddDate(0, 0, -1), true)
	assert.Equal(t, append([]string{"Yesterday"}, want...), collectNames(t, svc),
		"a second range must see the new trip")

	var first string
	for trip := range svc.ListTrips(context.Background()) {
		first = trip.Name
		break
	}
	assert.Equal(t, "Yesterday", first)
}

func TestCreateTrip(t *testing.T) {
	store := newMemStore()
	svc := newTestTripService(store.repository(), testNow)
	ctx := context.Background()

	trip, err := svc.CreateTrip(ctx, &request.CreateTripRequest{
		Name:  "Campus Express",
		Route: "Main gate - Station",
		Date:  "2026-05-02",
		Fare:  30,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultDepartureTime, trip.DepartureTime)
	assert.Equal(t, entity.DefaultTotalSeats, trip.TotalSeats)
	assert.Equal(t, entity.DefaultSeatsPerRow, trip.SeatsPerRow)
	assert.True(t, trip.IsActive)

	got, err := svc.GetTrip(ctx, trip.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Campus Express", got.Name)

	_, err = svc.CreateTrip(ctx, &request.CreateTripRequest{Name: "Old", Date: "2026-04-30"})
	assert.ErrorIs(t, err, ErrTripInPast)

	_, err = svc.CreateTrip(ctx, &request.CreateTripRequest{Name: "Bad;Name", Date: "2026-05-02"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateTrip(ctx, &request.CreateTripRequest{Name: "Ok", Date: "02/05/2026"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSetActiveAndDeleteTrip(t *testing.T) {
	store := newMemStore()
	repo := store.repository()
	svc := newTestTripService(repo, testNow)
	ctx := context.Background()
	trip := store.addTrip("Ronobheri", dateOnly(testNow), true)

	updated, err := svc.SetActive(ctx, trip.ID.String(), false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	_, err = svc.SetActive(ctx, uuid.NewString(), true)
	assert.ErrorIs(t, err, ErrTripNotFound)

	require.NoError(t, repo.SeatBooking.Create(ctx, &entity.SeatBooking{
		ID: uuid.New(), TripID: trip.ID, SeatNumber: "1A", UserID: uuid.New(), Status: entity.BookingStatusConfirmed,
	}))

	require.NoError(t, svc.DeleteTrip(ctx, trip.ID.String()))
	_, err = svc.GetTrip(ctx, trip.ID.String())
	assert.ErrorIs(t, err, ErrTripNotFound)

	seats, err := repo.SeatBooking.FindBookedSeatNumbers(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, seats, "bookings go with their trip")

	assert.ErrorIs(t, svc.DeleteTrip(ctx, trip.ID.String()), ErrTripNotFound)
	assert.ErrorIs(t, svc.DeleteTrip(ctx, "not-a-uuid"), ErrTripNotFound)
}
