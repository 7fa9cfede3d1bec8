package model

import "time"

// RentalStatus is the lifecycle state of a rental. Completed is terminal.
type RentalStatus string

const (
	RentalActive    RentalStatus = "active"
	RentalPaused    RentalStatus = "paused"
	RentalCompleted RentalStatus = "completed"
)

// Rental represents a time-boxed lease of one game, billed per started
// minute. TotalCost stays nil until the rental completes.
type Rental struct {
	ID         int64        `gorm:"primaryKey" json:"id"`
	GameID     int64        `gorm:"index;not null" json:"gameId"`
	CustomerID *int64       `gorm:"index" json:"customerId"`
	EmployeeID int64        `gorm:"index;not null" json:"employeeId"`
	BranchID   int64        `gorm:"index;not null" json:"branchId"`
	StartTime  time.Time    `gorm:"not null" json:"startTime"`
	EndTime    *time.Time   `json:"endTime"`
	PausedAt   *time.Time   `json:"pausedAt"`
	TotalCost  *int64       `json:"totalCost"`
	Status     RentalStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt  time.Time    `json:"-"`
	UpdatedAt  time.Time    `json:"-"`
}
