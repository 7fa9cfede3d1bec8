package model

import "time"

// GameStatus is the availability state of a game.
type GameStatus string

const (
	GameAvailable   GameStatus = "available"
	GameRented      GameStatus = "rented"
	GameMaintenance GameStatus = "maintenance"
)

// ValidGameStatus reports whether s is one of the recognized game statuses.
func ValidGameStatus(s GameStatus) bool {
	switch s {
	case GameAvailable, GameRented, GameMaintenance:
		return true
	}
	return false
}

// Game represents a rentable game unit. The QR code printed on the unit
// resolves to exactly one game.
type Game struct {
	ID           int64      `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:256;not null" json:"name"`
	QRCode       string     `gorm:"uniqueIndex;size:64;not null" json:"qrCode"`
	BranchID     int64      `gorm:"index;not null" json:"branchId"`
	Status       GameStatus `gorm:"size:16;not null;default:available" json:"status"`
	TotalRentals int        `gorm:"not null;default:0" json:"totalRentals"`
	Revenue      int64      `gorm:"not null;default:0" json:"revenue"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}
