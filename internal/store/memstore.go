package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"game-rental-backend/internal/model"
)

// memStore implements the Store interface with process-local maps. It is
// the reference backing: no durability, immediate visibility of writes. A
// single mutex serializes access, which also makes the game-status
// compare-and-swap atomic.
type memStore struct {
	mu sync.Mutex

	users    map[int64]model.User
	branches map[int64]model.Branch
	games    map[int64]model.Game
	rentals  map[int64]model.Rental

	subs     map[string]model.PushSubscription
	subGames map[string]map[int64]struct{}

	nextID map[string]int64

	ratePerMinute int64
	now           func() time.Time
}

// NewMemStore creates an empty in-memory store billing at the given rate.
func NewMemStore(ratePerMinute int64) Store {
	return &memStore{
		users:         make(map[int64]model.User),
		branches:      make(map[int64]model.Branch),
		games:         make(map[int64]model.Game),
		rentals:       make(map[int64]model.Rental),
		subs:          make(map[string]model.PushSubscription),
		subGames:      make(map[string]map[int64]struct{}),
		nextID:        map[string]int64{"users": 1, "branches": 1, "games": 1, "rentals": 1},
		ratePerMinute: ratePerMinute,
		now:           time.Now,
	}
}

func (s *memStore) claimID(kind string) int64 {
	id := s.nextID[kind]
	s.nextID[kind] = id + 1
	return id
}

// --- Users ---

func (s *memStore) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.claimID("users")
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = copyUser(user)
	return user, nil
}

func (s *memStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u = copyUser(u)
	return &u, nil
}

func (s *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			u = copyUser(u)
			return &u, nil
		}
	}
	return nil, nil
}

// --- Branches ---

func (s *memStore) CreateBranch(ctx context.Context, branch model.Branch) (model.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	branch.ID = s.claimID("branches")
	branch.CreatedAt = s.now()
	branch.UpdatedAt = branch.CreatedAt
	branch.Games = nil
	s.branches[branch.ID] = branch
	return branch, nil
}

func (s *memStore) GetBranch(ctx context.Context, id int64) (*model.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (s *memStore) ListBranches(ctx context.Context) ([]model.Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	branches := make([]model.Branch, 0, len(s.branches))
	for _, b := range s.branches {
		branches = append(branches, b)
	}
	sortByID(branches, func(b model.Branch) int64 { return b.ID })
	return branches, nil
}

// --- Games ---

func (s *memStore) CreateGame(ctx context.Context, game model.Game) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game.ID = s.claimID("games")
	game.QRCode = QRCodeFor(game.ID, game.BranchID)
	if game.Status == "" {
		game.Status = model.GameAvailable
	}
	game.CreatedAt = s.now()
	game.UpdatedAt = game.CreatedAt
	s.games[game.ID] = game
	return game, nil
}

func (s *memStore) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (s *memStore) GetGameByQR(ctx context.Context, code string) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.games {
		if g.QRCode == code {
			return &g, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListGames(ctx context.Context, branchID *int64) ([]model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	games := make([]model.Game, 0, len(s.games))
	for _, g := range s.games {
		if branchID != nil && g.BranchID != *branchID {
			continue
		}
		games = append(games, g)
	}
	sortByID(games, func(g model.Game) int64 { return g.ID })
	return games, nil
}

func (s *memStore) UpdateGameStatus(ctx context.Context, id int64, status model.GameStatus) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return model.Game{}, ErrNotFound
	}
	g.Status = status
	g.UpdatedAt = s.now()
	s.games[id] = g
	return g, nil
}

func (s *memStore) CompareAndSwapGameStatus(ctx context.Context, id int64, from, to model.GameStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return false, ErrNotFound
	}
	if g.Status != from {
		return false, nil
	}
	g.Status = to
	g.UpdatedAt = s.now()
	s.games[id] = g
	return true, nil
}

func (s *memStore) RecordGameRental(ctx context.Context, id int64, cost int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.games[id]
	if !ok {
		return ErrNotFound
	}
	g.TotalRentals++
	g.Revenue += cost
	g.UpdatedAt = s.now()
	s.games[id] = g
	return nil
}

// --- Rentals ---

func (s *memStore) CreateRental(ctx context.Context, rental model.Rental) (model.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rental.ID = s.claimID("rentals")
	if rental.StartTime.IsZero() {
		rental.StartTime = s.now()
	}
	if rental.Status == "" {
		rental.Status = model.RentalActive
	}
	rental.EndTime = nil
	rental.TotalCost = nil
	rental.CreatedAt = s.now()
	rental.UpdatedAt = rental.CreatedAt
	s.rentals[rental.ID] = copyRental(rental)
	return rental, nil
}

func (s *memStore) GetRental(ctx context.Context, id int64) (*model.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rentals[id]
	if !ok {
		return nil, nil
	}
	r = copyRental(r)
	return &r, nil
}

func (s *memStore) ListActiveRentals(ctx context.Context, branchID *int64) ([]model.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var branchGames map[int64]struct{}
	if branchID != nil {
		branchGames = make(map[int64]struct{})
		for _, g := range s.games {
			if g.BranchID == *branchID {
				branchGames[g.ID] = struct{}{}
			}
		}
	}

	rentals := make([]model.Rental, 0)
	for _, r := range s.rentals {
		if r.Status != model.RentalActive && r.Status != model.RentalPaused {
			continue
		}
		if branchGames != nil {
			if _, ok := branchGames[r.GameID]; !ok {
				continue
			}
		}
		rentals = append(rentals, copyRental(r))
	}
	sortByID(rentals, func(r model.Rental) int64 { return r.ID })
	return rentals, nil
}

func (s *memStore) ListRentalsBetween(ctx context.Context, from, to time.Time) ([]model.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rentals := make([]model.Rental, 0)
	for _, r := range s.rentals {
		if r.StartTime.Before(from) || r.StartTime.After(to) {
			continue
		}
		rentals = append(rentals, copyRental(r))
	}
	sortByID(rentals, func(r model.Rental) int64 { return r.ID })
	return rentals, nil
}

func (s *memStore) TransitionRental(ctx context.Context, id int64, from []model.RentalStatus, to model.RentalStatus, endTime, pausedAt *time.Time) (model.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rentals[id]
	if !ok {
		return model.Rental{}, ErrNotFound
	}
	if !statusIn(r.Status, from) {
		return model.Rental{}, fmt.Errorf("rental %d is %s: %w", id, r.Status, ErrInvalidState)
	}

	r.Status = to
	r.PausedAt = cloneTime(pausedAt)
	if endTime != nil {
		r.EndTime = cloneTime(endTime)
	}
	if to == model.RentalCompleted && endTime != nil {
		cost := BilledCost(r.StartTime, *endTime, s.ratePerMinute)
		r.TotalCost = &cost
	}
	r.UpdatedAt = s.now()
	s.rentals[id] = copyRental(r)
	return copyRental(r), nil
}

// --- Push subscriptions ---

func (s *memStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, gameIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub.Games = nil
	if existing, ok := s.subs[sub.Endpoint]; ok {
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.CreatedAt = s.now()
	}
	s.subs[sub.Endpoint] = sub

	ids := make(map[int64]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		if _, ok := s.games[id]; ok {
			ids[id] = struct{}{}
		}
	}
	s.subGames[sub.Endpoint] = ids
	return nil
}

func (s *memStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, []int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[endpoint]
	if !ok {
		return nil, nil, nil
	}
	ids := make([]int64, 0, len(s.subGames[endpoint]))
	for id := range s.subGames[endpoint] {
		ids = append(ids, id)
	}
	sortByID(ids, func(id int64) int64 { return id })
	return &sub, ids, nil
}

func (s *memStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subs, endpoint)
	delete(s.subGames, endpoint)
	return nil
}

func (s *memStore) ListSubscriptionsForGame(ctx context.Context, gameID int64) ([]model.PushSubscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var subs []model.PushSubscription
	for endpoint, ids := range s.subGames {
		if _, ok := ids[gameID]; ok {
			subs = append(subs, s.subs[endpoint])
		}
	}
	return subs, nil
}

// --- copy helpers ---

func copyUser(u model.User) model.User {
	u.BranchID = cloneInt64(u.BranchID)
	return u
}

func copyRental(r model.Rental) model.Rental {
	r.CustomerID = cloneInt64(r.CustomerID)
	r.EndTime = cloneTime(r.EndTime)
	r.PausedAt = cloneTime(r.PausedAt)
	r.TotalCost = cloneInt64(r.TotalCost)
	return r
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func statusIn(status model.RentalStatus, set []model.RentalStatus) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}
