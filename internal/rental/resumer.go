package rental

import (
	"context"
	"log"
	"time"

	"game-rental-backend/internal/model"
	"game-rental-backend/internal/store"
)

// Resumer reactivates rentals that have been paused for longer than a
// configured window. The storefront tells customers a paused rental resumes
// after that window, and this loop is what makes the claim true.
type Resumer struct {
	store  store.Store
	engine *Engine

	after    time.Duration
	interval time.Duration
}

// NewResumer creates a resumer that reactivates rentals paused for longer
// than "after", checking every "interval".
func NewResumer(s store.Store, engine *Engine, after, interval time.Duration) *Resumer {
	return &Resumer{
		store:    s,
		engine:   engine,
		after:    after,
		interval: interval,
	}
}

// Run executes the resume check on a fixed interval until the context is
// cancelled.
func (r *Resumer) Run(ctx context.Context) {
	log.Printf("Auto-resume loop started (window %s, check every %s)", r.after, r.interval)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.ResumeOverdue(ctx)
		case <-ctx.Done():
			log.Println("Auto-resume loop stopping")
			return
		}
	}
}

// ResumeOverdue reactivates every rental whose pause window has elapsed and
// returns how many were resumed.
func (r *Resumer) ResumeOverdue(ctx context.Context) int {
	rentals, err := r.store.ListActiveRentals(ctx, nil)
	if err != nil {
		log.Printf("Error listing rentals for auto-resume: %v", err)
		return 0
	}

	cutoff := r.engine.now().Add(-r.after)
	resumed := 0
	for _, rental := range rentals {
		if rental.Status != model.RentalPaused || rental.PausedAt == nil {
			continue
		}
		if rental.PausedAt.After(cutoff) {
			continue
		}
		if _, err := r.engine.Resume(ctx, rental.ID); err != nil {
			log.Printf("Error auto-resuming rental %d: %v", rental.ID, err)
			continue
		}
		log.Printf("Auto-resumed rental %d (paused since %s)", rental.ID, rental.PausedAt.Format(time.RFC3339))
		resumed++
	}
	return resumed
}
