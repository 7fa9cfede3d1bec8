package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"game-rental-backend/internal/model"
)

// gormStore implements the Store interface on top of GORM. Status
// compare-and-swap relies on a conditional UPDATE, so the §5-style race
// between availability check and rental creation cannot occur regardless of
// how many server instances share the database.
type gormStore struct {
	db            *gorm.DB
	ratePerMinute int64
}

// NewGormStore creates a new GORM-backed store billing at the given rate.
func NewGormStore(db *gorm.DB, ratePerMinute int64) Store {
	return &gormStore{db: db, ratePerMinute: ratePerMinute}
}

func firstOrNil[T any](db *gorm.DB, conds ...interface{}) (*T, error) {
	var rec T
	err := db.First(&rec, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// --- Users ---

func (s *gormStore) CreateUser(ctx context.Context, user model.User) (model.User, error) {
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *gormStore) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return firstOrNil[model.User](s.db.WithContext(ctx), id)
}

func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return firstOrNil[model.User](s.db.WithContext(ctx), "email = ?", email)
}

// --- Branches ---

func (s *gormStore) CreateBranch(ctx context.Context, branch model.Branch) (model.Branch, error) {
	if err := s.db.WithContext(ctx).Create(&branch).Error; err != nil {
		return model.Branch{}, fmt.Errorf("create branch: %w", err)
	}
	return branch, nil
}

func (s *gormStore) GetBranch(ctx context.Context, id int64) (*model.Branch, error) {
	return firstOrNil[model.Branch](s.db.WithContext(ctx), id)
}

func (s *gormStore) ListBranches(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	if err := s.db.WithContext(ctx).Order("id").Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// --- Games ---

// CreateGame inserts the game and stamps its QR code once the database has
// assigned an id. Both steps run in one transaction.
func (s *gormStore) CreateGame(ctx context.Context, game model.Game) (model.Game, error) {
	if game.Status == "" {
		game.Status = model.GameAvailable
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Unique placeholder until the generated id is known.
		game.QRCode = fmt.Sprintf("PENDING-%d", time.Now().UnixNano())
		if err := tx.Create(&game).Error; err != nil {
			return err
		}
		game.QRCode = QRCodeFor(game.ID, game.BranchID)
		return tx.Model(&game).Update("qr_code", game.QRCode).Error
	})
	if err != nil {
		return model.Game{}, fmt.Errorf("create game: %w", err)
	}
	return game, nil
}

func (s *gormStore) GetGame(ctx context.Context, id int64) (*model.Game, error) {
	return firstOrNil[model.Game](s.db.WithContext(ctx), id)
}

func (s *gormStore) GetGameByQR(ctx context.Context, code string) (*model.Game, error) {
	return firstOrNil[model.Game](s.db.WithContext(ctx), "qr_code = ?", code)
}

func (s *gormStore) ListGames(ctx context.Context, branchID *int64) ([]model.Game, error) {
	q := s.db.WithContext(ctx).Order("id")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	var games []model.Game
	if err := q.Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (s *gormStore) UpdateGameStatus(ctx context.Context, id int64, status model.GameStatus) (model.Game, error) {
	var game model.Game
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&game, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		game.Status = status
		return tx.Model(&game).Update("status", status).Error
	})
	if err != nil {
		return model.Game{}, err
	}
	return game, nil
}

func (s *gormStore) CompareAndSwapGameStatus(ctx context.Context, id int64, from, to model.GameStatus) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Game{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	// Distinguish a status mismatch from an unknown id.
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Game{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *gormStore) RecordGameRental(ctx context.Context, id int64, cost int64) error {
	res := s.db.WithContext(ctx).Model(&model.Game{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_rentals": gorm.Expr("total_rentals + 1"),
			"revenue":       gorm.Expr("revenue + ?", cost),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Rentals ---

func (s *gormStore) CreateRental(ctx context.Context, rental model.Rental) (model.Rental, error) {
	if rental.StartTime.IsZero() {
		rental.StartTime = time.Now()
	}
	if rental.Status == "" {
		rental.Status = model.RentalActive
	}
	rental.EndTime = nil
	rental.TotalCost = nil
	if err := s.db.WithContext(ctx).Create(&rental).Error; err != nil {
		return model.Rental{}, fmt.Errorf("create rental: %w", err)
	}
	return rental, nil
}

func (s *gormStore) GetRental(ctx context.Context, id int64) (*model.Rental, error) {
	return firstOrNil[model.Rental](s.db.WithContext(ctx), id)
}

func (s *gormStore) ListActiveRentals(ctx context.Context, branchID *int64) ([]model.Rental, error) {
	q := s.db.WithContext(ctx).
		Where("status IN ?", []model.RentalStatus{model.RentalActive, model.RentalPaused}).
		Order("id")
	if branchID != nil {
		q = q.Where("game_id IN (?)", s.db.Model(&model.Game{}).Select("id").Where("branch_id = ?", *branchID))
	}
	var rentals []model.Rental
	if err := q.Find(&rentals).Error; err != nil {
		return nil, err
	}
	return rentals, nil
}

func (s *gormStore) ListRentalsBetween(ctx context.Context, from, to time.Time) ([]model.Rental, error) {
	var rentals []model.Rental
	err := s.db.WithContext(ctx).
		Where("start_time >= ? AND start_time <= ?", from, to).
		Order("id").
		Find(&rentals).Error
	if err != nil {
		return nil, err
	}
	return rentals, nil
}

func (s *gormStore) TransitionRental(ctx context.Context, id int64, from []model.RentalStatus, to model.RentalStatus, endTime, pausedAt *time.Time) (model.Rental, error) {
	var rental model.Rental
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The start time never changes after creation, so it is safe to
		// read it here for the cost computation; the status guard itself
		// lives in the conditional UPDATE below.
		if err := tx.First(&rental, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"status":    to,
			"paused_at": pausedAt,
		}
		if endTime != nil {
			updates["end_time"] = endTime
		}
		if to == model.RentalCompleted && endTime != nil {
			updates["total_cost"] = BilledCost(rental.StartTime, *endTime, s.ratePerMinute)
		}

		res := tx.Model(&model.Rental{}).
			Where("id = ? AND status IN ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("rental %d is %s: %w", id, rental.Status, ErrInvalidState)
		}
		return tx.First(&rental, id).Error
	})
	if err != nil {
		return model.Rental{}, err
	}
	return rental, nil
}

// --- Push subscriptions ---

func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription, gameIDs []int64) error {
	sub.Games = nil
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return err
		}

		var games []model.Game
		if len(gameIDs) > 0 {
			if err := tx.Find(&games, gameIDs).Error; err != nil {
				return err
			}
		}
		return tx.Model(&sub).Association("Games").Replace(&games)
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, []int64, error) {
	var sub model.PushSubscription
	err := s.db.WithContext(ctx).Preload("Games").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	gameIDs := make([]int64, len(sub.Games))
	for i, g := range sub.Games {
		gameIDs[i] = g.ID
	}
	return &sub, gameIDs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) ListSubscriptionsForGame(ctx context.Context, gameID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_game_mapping sgm ON sgm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("sgm.game_id = ?", gameID).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
