// internal/domain/models/profile.go
package models

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a profile
//   - Email: What an operator types to sign in to the console (stored lowercase)

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is a platform account. Reviewers and console operators share the
// same collection; operators carry IsAdmin.
//
// Balance is a pointer because older documents were written without it and
// the analytics layer must treat a missing balance as zero.
type Profile struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         *string            `bson:"email,omitempty" json:"email,omitempty"` // lowercase
	DisplayName   *string            `bson:"display_name,omitempty" json:"display_name,omitempty"`
	DisplayNameCI *string            `bson:"display_name_ci,omitempty" json:"-"` // folded for search

	Balance               *float64   `bson:"balance,omitempty" json:"balance"`
	WithdrawalGoal        float64    `bson:"withdrawal_goal" json:"withdrawal_goal"`
	DailyReviewsCompleted int        `bson:"daily_reviews_completed" json:"daily_reviews_completed"`
	TotalReviews          int        `bson:"total_reviews" json:"total_reviews"`
	CurrentStreak         int        `bson:"current_streak" json:"current_streak"`
	LastReviewDate        *time.Time `bson:"last_review_date,omitempty" json:"last_review_date,omitempty"`

	// Access control
	IsAdmin                bool    `bson:"is_admin" json:"is_admin"`
	IsBlocked              bool    `bson:"is_blocked" json:"is_blocked"`
	PasswordHash           *string `bson:"password_hash,omitempty" json:"-"` // bcrypt hash (never in JSON)
	RequiresPasswordChange bool    `bson:"requires_password_change" json:"requires_password_change"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Profile statuses, in badge precedence order.
const (
	StatusAdmin   = "admin"
	StatusBlocked = "blocked"
	StatusActive  = "active"
)

// Status returns the single status a profile is listed under.
// Admin wins over blocked, blocked wins over active.
func (p Profile) Status() string {
	switch {
	case p.IsAdmin:
		return StatusAdmin
	case p.IsBlocked:
		return StatusBlocked
	default:
		return StatusActive
	}
}

// BalanceValue returns the balance, treating a missing value as zero.
func (p Profile) BalanceValue() float64 {
	if p.Balance == nil {
		return 0
	}
	return *p.Balance
}

// AllStatuses returns the filterable profile statuses.
func AllStatuses() []string {
	return []string{StatusActive, StatusBlocked, StatusAdmin}
}

// IsValidStatus checks if a status filter value is valid.
func IsValidStatus(status string) bool {
	for _, s := range AllStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
