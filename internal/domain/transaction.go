package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction records a membership/subscription payment. Together with
// engagement totals these feed the sales reporting buckets.
type Transaction struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID  `bson:"userId" json:"userId"`
	BranchID       *primitive.ObjectID `bson:"branchId,omitempty" json:"branchId,omitempty"`
	PlanLabel      string              `bson:"planLabel,omitempty" json:"planLabel,omitempty"`
	Amount         float64             `bson:"amount" json:"amount"`
	SubscribedDate time.Time           `bson:"subscribedDate" json:"subscribedDate"`
	ExpirationDate *time.Time          `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}
