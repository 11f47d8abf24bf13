// internal/domain/models/balanceadjustment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BalanceAdjustment records a manual change an operator made to a balance.
// Rows are append-only.
type BalanceAdjustment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"`
	ActorID         primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Amount          float64            `bson:"amount" json:"amount"`
	PreviousBalance float64            `bson:"previous_balance" json:"previous_balance"`
	NewBalance      float64            `bson:"new_balance" json:"new_balance"`
	Reason          string             `bson:"reason" json:"reason"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}
