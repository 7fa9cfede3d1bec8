package model

import "time"

// Role classifies what a user may do in the system.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// ValidRole reports whether r is one of the recognized roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleCustomer:
		return true
	}
	return false
}

// User represents an account. Employees and admins belong to a branch;
// customers may have no branch.
type User struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Email       string    `gorm:"uniqueIndex;size:256;not null" json:"email"`
	Role        Role      `gorm:"size:16;not null" json:"role"`
	BranchID    *int64    `gorm:"index" json:"branchId"`
	DisplayName string    `gorm:"size:256" json:"displayName"`
	Location    string    `gorm:"size:256" json:"location"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}
