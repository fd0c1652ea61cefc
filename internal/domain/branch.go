package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Branch is a gym location. Pure reference data, consumed for display.
type Branch struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	Contact   string             `bson:"contact,omitempty" json:"contact,omitempty"`
	Place     string             `bson:"place,omitempty" json:"place,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
