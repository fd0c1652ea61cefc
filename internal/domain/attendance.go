package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AttendanceLog is a single gym check-in by a member.
type AttendanceLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Date      time.Time          `bson:"date" json:"date"` // Check-in timestamp
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
