package store

import (
	"context"
	"fmt"
	"time"

	"game-rental-backend/internal/model"
)

// Store defines the interface for all entity persistence operations. Two
// implementations exist: an in-memory store and a GORM-backed store. All
// records cross the interface by value; callers never share memory with the
// store's own state.
//
// Get lookups return (nil, nil) when no record matches; only mutations
// report ErrNotFound.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Branch operations
	CreateBranch(ctx context.Context, branch model.Branch) (model.Branch, error)
	GetBranch(ctx context.Context, id int64) (*model.Branch, error)
	ListBranches(ctx context.Context) ([]model.Branch, error)

	// Game operations
	CreateGame(ctx context.Context, game model.Game) (model.Game, error)
	GetGame(ctx context.Context, id int64) (*model.Game, error)
	GetGameByQR(ctx context.Context, code string) (*model.Game, error)
	ListGames(ctx context.Context, branchID *int64) ([]model.Game, error)
	UpdateGameStatus(ctx context.Context, id int64, status model.GameStatus) (model.Game, error)
	// CompareAndSwapGameStatus atomically replaces the game's status with
	// "to" only if it currently equals "from". It reports whether the swap
	// happened. Unknown ids return ErrNotFound.
	CompareAndSwapGameStatus(ctx context.Context, id int64, from, to model.GameStatus) (bool, error)
	// RecordGameRental bumps the game's rental counter and revenue total.
	RecordGameRental(ctx context.Context, id int64, cost int64) error

	// Rental operations
	CreateRental(ctx context.Context, rental model.Rental) (model.Rental, error)
	GetRental(ctx context.Context, id int64) (*model.Rental, error)
	ListActiveRentals(ctx context.Context, branchID *int64) ([]model.Rental, error)
	ListRentalsBetween(ctx context.Context, from, to time.Time) ([]model.Rental, error)
	// TransitionRental atomically replaces the rental's status with "to"
	// only if its current status is one of "from", stamping endTime and
	// pausedAt as supplied (a nil pausedAt clears the field). When the new
	// status is completed and endTime is set, the total cost is computed
	// from the elapsed wall-clock time and attached to the record. A rental
	// whose status is not in "from" is left untouched and ErrInvalidState is
	// returned; unknown ids return ErrNotFound.
	TransitionRental(ctx context.Context, id int64, from []model.RentalStatus, to model.RentalStatus, endTime, pausedAt *time.Time) (model.Rental, error)

	// Push subscription operations
	UpsertSubscription(ctx context.Context, sub model.PushSubscription, gameIDs []int64) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, []int64, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptionsForGame(ctx context.Context, gameID int64) ([]model.PushSubscription, error)
}

// BilledCost converts an elapsed rental interval into currency units. Any
// started minute bills as a full minute, and a zero-length interval still
// bills one minute.
func BilledCost(start, end time.Time, ratePerMinute int64) int64 {
	minutes := int64(0)
	if d := end.Sub(start); d > 0 {
		minutes = int64((d + time.Minute - 1) / time.Minute)
	}
	if minutes < 1 {
		minutes = 1
	}
	return minutes * ratePerMinute
}

// QRCodeFor synthesizes the printed QR payload for a game. The value is
// deterministic from the game and branch identifiers.
func QRCodeFor(gameID, branchID int64) string {
	return fmt.Sprintf("GAME-%d-%d", gameID, branchID)
}
