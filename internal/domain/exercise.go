package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the library.
// Sessions reference exercises by ID through their trainings list.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	TargetMuscle string             `bson:"targetMuscle,omitempty" json:"targetMuscle,omitempty"` // e.g. "Chest", "Legs", "Back"
	Difficulty   string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`     // e.g. "Novice", "Medium", "Advanced"
	Instructions string             `bson:"instructions,omitempty" json:"instructions,omitempty"`

	// MediaKey is the object key of a demo image/video in the media bucket;
	// empty if none was uploaded. Clients fetch it via a presigned URL.
	MediaKey string `bson:"mediaKey,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
