package rental

import (
	"context"
	"fmt"
	"log"
	"time"

	"game-rental-backend/internal/model"
	"game-rental-backend/internal/store"
)

// Dispatcher receives the id of a game that has just become available.
type Dispatcher interface {
	Dispatch(gameID int64)
}

// Engine drives the rental state machine: active -> paused -> active ->
// completed. It keeps the game's status in lockstep with its rental and is
// the only component that transitions rentals.
type Engine struct {
	store      store.Store
	dispatcher Dispatcher
	now        func() time.Time
}

// NewEngine creates a lifecycle engine. dispatcher may be nil when
// availability notifications are disabled.
func NewEngine(s store.Store, dispatcher Dispatcher) *Engine {
	return &Engine{
		store:      s,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// Start begins a rental for the given game. The game must currently be
// available; the availability check and the status flip are a single
// compare-and-swap, so of two concurrent starts for one game exactly one
// succeeds.
func (e *Engine) Start(ctx context.Context, gameID int64, customerID *int64, employeeID int64) (model.Rental, error) {
	game, err := e.store.GetGame(ctx, gameID)
	if err != nil {
		return model.Rental{}, fmt.Errorf("resolve game %d: %w", gameID, err)
	}
	if game == nil || game.Status != model.GameAvailable {
		return model.Rental{}, fmt.Errorf("game %d is not available: %w", gameID, store.ErrInvalidState)
	}

	swapped, err := e.store.CompareAndSwapGameStatus(ctx, gameID, model.GameAvailable, model.GameRented)
	if err != nil {
		return model.Rental{}, fmt.Errorf("mark game %d rented: %w", gameID, err)
	}
	if !swapped {
		// Lost the race against a concurrent start.
		return model.Rental{}, fmt.Errorf("game %d is not available: %w", gameID, store.ErrInvalidState)
	}

	rental, err := e.store.CreateRental(ctx, model.Rental{
		GameID:     gameID,
		CustomerID: customerID,
		EmployeeID: employeeID,
		BranchID:   game.BranchID,
		StartTime:  e.now(),
		Status:     model.RentalActive,
	})
	if err != nil {
		if _, swapErr := e.store.CompareAndSwapGameStatus(ctx, gameID, model.GameRented, model.GameAvailable); swapErr != nil {
			log.Printf("Error releasing game %d after failed rental creation: %v", gameID, swapErr)
		}
		return model.Rental{}, fmt.Errorf("create rental: %w", err)
	}
	return rental, nil
}

// Pause suspends an active rental. No cost is computed and endTime stays
// unset. The status check and the write are a single conditional
// transition in the store, so a pause racing another transition cannot
// overwrite its result.
func (e *Engine) Pause(ctx context.Context, id int64) (model.Rental, error) {
	pausedAt := e.now()
	return e.store.TransitionRental(ctx, id,
		[]model.RentalStatus{model.RentalActive}, model.RentalPaused, nil, &pausedAt)
}

// Resume reactivates a paused rental and clears its pause marker.
func (e *Engine) Resume(ctx context.Context, id int64) (model.Rental, error) {
	return e.store.TransitionRental(ctx, id,
		[]model.RentalStatus{model.RentalPaused}, model.RentalActive, nil, nil)
}

// Stop completes an active or paused rental. The total cost is computed
// from start to now, the game goes back to available, its rental stats are
// recorded, and availability subscribers are notified. Completed is
// terminal: stopping twice is rejected by the store's conditional
// transition.
func (e *Engine) Stop(ctx context.Context, id int64) (model.Rental, error) {
	endTime := e.now()
	updated, err := e.store.TransitionRental(ctx, id,
		[]model.RentalStatus{model.RentalActive, model.RentalPaused}, model.RentalCompleted, &endTime, nil)
	if err != nil {
		return model.Rental{}, err
	}

	// Release with a compare-and-swap so a game moved to maintenance
	// mid-rental stays in maintenance.
	released, err := e.store.CompareAndSwapGameStatus(ctx, updated.GameID, model.GameRented, model.GameAvailable)
	if err != nil {
		return model.Rental{}, fmt.Errorf("release game %d: %w", updated.GameID, err)
	}
	if updated.TotalCost != nil {
		if err := e.store.RecordGameRental(ctx, updated.GameID, *updated.TotalCost); err != nil {
			log.Printf("Error recording rental stats for game %d: %v", updated.GameID, err)
		}
	}

	if released && e.dispatcher != nil {
		e.dispatcher.Dispatch(updated.GameID)
	}
	return updated, nil
}
