package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"game-rental-backend/internal/model"
)

func newStoreWithBranch(t *testing.T) (Store, model.Branch) {
	t.Helper()
	s := NewMemStore(3)
	branch, err := s.CreateBranch(context.Background(), model.Branch{Name: "Main Branch", Location: "City Center"})
	require.NoError(t, err)
	return s, branch
}

func TestMemStore_CreateGame(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	g1, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)
	g2, err := s.CreateGame(ctx, model.Game{Name: "Air Hockey", BranchID: branch.ID})
	require.NoError(t, err)

	assert.Equal(t, int64(1), g1.ID, "ids start at 1")
	assert.Equal(t, int64(2), g2.ID, "ids are monotonic")
	assert.Equal(t, "GAME-1-1", g1.QRCode)
	assert.Equal(t, "GAME-2-1", g2.QRCode)
	assert.Equal(t, model.GameAvailable, g1.Status, "new games default to available")
}

func TestMemStore_GetGameByQR(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	created, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	found, err := s.GetGameByQR(ctx, created.QRCode)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := s.GetGameByQR(ctx, "GAME-999-999")
	require.NoError(t, err, "unknown QR code is not an error")
	assert.Nil(t, missing)
}

func TestMemStore_AbsentLookups(t *testing.T) {
	s := NewMemStore(3)
	ctx := context.Background()

	game, err := s.GetGame(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, game)

	user, err := s.GetUser(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, user)

	rental, err := s.GetRental(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, rental)

	branch, err := s.GetBranch(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, branch)
}

func TestMemStore_UpdateGameStatus(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	game, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	updated, err := s.UpdateGameStatus(ctx, game.ID, model.GameMaintenance)
	require.NoError(t, err)
	assert.Equal(t, model.GameMaintenance, updated.Status)

	_, err = s.UpdateGameStatus(ctx, 999, model.GameAvailable)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_CompareAndSwapGameStatus(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	game, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	swapped, err := s.CompareAndSwapGameStatus(ctx, game.ID, model.GameAvailable, model.GameRented)
	require.NoError(t, err)
	assert.True(t, swapped)

	// Second swap from available must fail: the status is now rented.
	swapped, err = s.CompareAndSwapGameStatus(ctx, game.ID, model.GameAvailable, model.GameRented)
	require.NoError(t, err)
	assert.False(t, swapped)

	_, err = s.CompareAndSwapGameStatus(ctx, 999, model.GameAvailable, model.GameRented)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_ConcurrentCAS(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	game, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	const attempts = 32
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			swapped, err := s.CompareAndSwapGameStatus(ctx, game.ID, model.GameAvailable, model.GameRented)
			assert.NoError(t, err)
			if swapped {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one concurrent swap may succeed")
}

func TestMemStore_ListActiveRentalsBranchFilter(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	other, err := s.CreateBranch(ctx, model.Branch{Name: "Westside", Location: "Mall"})
	require.NoError(t, err)

	g1, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)
	g2, err := s.CreateGame(ctx, model.Game{Name: "Darts", BranchID: other.ID})
	require.NoError(t, err)

	r1, err := s.CreateRental(ctx, model.Rental{GameID: g1.ID, EmployeeID: 1, BranchID: branch.ID})
	require.NoError(t, err)
	r2, err := s.CreateRental(ctx, model.Rental{GameID: g2.ID, EmployeeID: 1, BranchID: other.ID})
	require.NoError(t, err)

	// Paused rentals still count as active; completed ones do not.
	pausedAt := time.Now()
	_, err = s.TransitionRental(ctx, r2.ID, []model.RentalStatus{model.RentalActive}, model.RentalPaused, nil, &pausedAt)
	require.NoError(t, err)

	all, err := s.ListActiveRentals(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := s.ListActiveRentals(ctx, &branch.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, r1.ID, filtered[0].ID)

	endTime := time.Now()
	_, err = s.TransitionRental(ctx, r1.ID, []model.RentalStatus{model.RentalActive}, model.RentalCompleted, &endTime, nil)
	require.NoError(t, err)

	filtered, err = s.ListActiveRentals(ctx, &branch.ID)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestMemStore_TransitionRentalComputesCost(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	game, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rental, err := s.CreateRental(ctx, model.Rental{
		GameID:     game.ID,
		EmployeeID: 1,
		BranchID:   branch.ID,
		StartTime:  start,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RentalActive, rental.Status)
	assert.Nil(t, rental.TotalCost)
	assert.Nil(t, rental.EndTime)

	end := start.Add(61 * time.Second)
	updated, err := s.TransitionRental(ctx, rental.ID, []model.RentalStatus{model.RentalActive}, model.RentalCompleted, &end, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.TotalCost)
	assert.Equal(t, int64(6), *updated.TotalCost, "61s bills as two minutes")

	_, err = s.TransitionRental(ctx, 999, []model.RentalStatus{model.RentalActive}, model.RentalCompleted, &end, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_TransitionRentalGuardsStatus(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	game, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)
	rental, err := s.CreateRental(ctx, model.Rental{GameID: game.ID, EmployeeID: 1, BranchID: branch.ID})
	require.NoError(t, err)

	end := time.Now()
	completed, err := s.TransitionRental(ctx, rental.ID, []model.RentalStatus{model.RentalActive}, model.RentalCompleted, &end, nil)
	require.NoError(t, err)

	// Check and write are one operation: a writer holding a stale view of
	// the status cannot overwrite the completed record.
	pausedAt := time.Now()
	_, err = s.TransitionRental(ctx, rental.ID, []model.RentalStatus{model.RentalActive}, model.RentalPaused, nil, &pausedAt)
	assert.ErrorIs(t, err, ErrInvalidState)

	got, err := s.GetRental(ctx, rental.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RentalCompleted, got.Status)
	assert.Nil(t, got.PausedAt)
	assert.Equal(t, completed.TotalCost, got.TotalCost)
}

func TestBilledCost(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		elapsed time.Duration
		want    int64
	}{
		{"zero-length interval bills one minute", 0, 3},
		{"exactly one minute", 60 * time.Second, 3},
		{"one second over bills the next minute", 61 * time.Second, 6},
		{"ten minutes", 10 * time.Minute, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BilledCost(start, start.Add(tc.elapsed), 3))
		})
	}
}

func TestMemStore_RecordGameRental(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	game, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	require.NoError(t, s.RecordGameRental(ctx, game.ID, 12))
	require.NoError(t, s.RecordGameRental(ctx, game.ID, 6))

	got, err := s.GetGame(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TotalRentals)
	assert.Equal(t, int64(18), got.Revenue)

	assert.ErrorIs(t, s.RecordGameRental(ctx, 999, 3), ErrNotFound)
}

func TestMemStore_RecordsAreCopies(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	game, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)

	got, err := s.GetGame(ctx, game.ID)
	require.NoError(t, err)
	got.Status = model.GameMaintenance

	again, err := s.GetGame(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GameAvailable, again.Status, "mutating a returned record must not touch the store")

	rental, err := s.CreateRental(ctx, model.Rental{GameID: game.ID, EmployeeID: 1, BranchID: branch.ID})
	require.NoError(t, err)

	gotRental, err := s.GetRental(ctx, rental.ID)
	require.NoError(t, err)
	fake := int64(999)
	gotRental.TotalCost = &fake

	againRental, err := s.GetRental(ctx, rental.ID)
	require.NoError(t, err)
	assert.Nil(t, againRental.TotalCost)
}

func TestMemStore_Users(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, model.User{
		Email:    "jane@example.com",
		Role:     model.RoleEmployee,
		BranchID: &branch.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)

	found, err := s.GetUserByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := s.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemStore_Subscriptions(t *testing.T) {
	s, branch := newStoreWithBranch(t)
	ctx := context.Background()

	g1, err := s.CreateGame(ctx, model.Game{Name: "Foosball", BranchID: branch.ID})
	require.NoError(t, err)
	g2, err := s.CreateGame(ctx, model.Game{Name: "Darts", BranchID: branch.ID})
	require.NoError(t, err)

	sub := model.PushSubscription{Endpoint: "https://push.example.com/abc", P256DH: "key", Auth: "auth"}
	require.NoError(t, s.UpsertSubscription(ctx, sub, []int64{g1.ID, g2.ID, 999}))

	got, gameIDs, err := s.GetSubscription(ctx, sub.Endpoint)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []int64{g1.ID, g2.ID}, gameIDs, "unknown game ids are dropped")

	forGame, err := s.ListSubscriptionsForGame(ctx, g1.ID)
	require.NoError(t, err)
	require.Len(t, forGame, 1)
	assert.Equal(t, sub.Endpoint, forGame[0].Endpoint)

	require.NoError(t, s.DeleteSubscription(ctx, sub.Endpoint))
	got, _, err = s.GetSubscription(ctx, sub.Endpoint)
	require.NoError(t, err)
	assert.Nil(t, got)
}
