package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EngagementStatus type for the engagement lifecycle
type EngagementStatus string

const (
	EngagementActive   EngagementStatus = "active"
	EngagementInactive EngagementStatus = "inactive" // Every session completed
)

// SessionStatus type for a single session's lifecycle
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"   // Never scheduled (or cancelled back)
	SessionWaiting   SessionStatus = "waiting"   // Scheduled, not yet attended
	SessionCompleted SessionStatus = "completed" // Finished
)

// Signature stores the reference to an externally hosted signature image.
type Signature struct {
	PublicID string `bson:"publicId" json:"publicId"`
	URL      string `bson:"url" json:"url"`
}

// Session is one unit inside an engagement's fixed-size schedule.
// DateAssigned and TimeAssigned are both nil while the session is unscheduled.
type Session struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Index        int                  `bson:"index" json:"index"` // 1-based, immutable
	DateAssigned *time.Time           `bson:"dateAssigned" json:"dateAssigned"`
	TimeAssigned *string              `bson:"timeAssigned" json:"timeAssigned"` // e.g. "10:00 AM"
	Status       SessionStatus        `bson:"status" json:"status"`
	Trainings    []primitive.ObjectID `bson:"trainings" json:"trainings"` // Exercise references for the session
}

// TrainingEngagement is one client's purchased block of training sessions
// with one coach. The schedule length is fixed to SessionsTotal at creation;
// sessions are never added or removed afterward.
type TrainingEngagement struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID  `bson:"clientId" json:"clientId"` // Immutable after creation
	CoachID       *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`
	SessionsTotal int                 `bson:"sessionsTotal" json:"sessionsTotal"`
	SessionRate   float64             `bson:"sessionRate" json:"sessionRate"`
	TotalAmount   float64             `bson:"totalAmount" json:"totalAmount"` // SessionsTotal * SessionRate, computed at creation
	PackageLabel  string              `bson:"packageLabel,omitempty" json:"packageLabel,omitempty"`
	Status        EngagementStatus    `bson:"status" json:"status"`
	Schedule      []Session           `bson:"schedule" json:"schedule"`
	Signature     *Signature          `bson:"signature,omitempty" json:"signature,omitempty"`

	// Revision is bumped on every schedule write and checked in the update
	// filter so concurrent lifecycle operations fail instead of overwriting
	// each other.
	Revision int64 `bson:"revision" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AllSessionsCompleted reports whether every session in the schedule has
// reached the completed status.
func (e *TrainingEngagement) AllSessionsCompleted() bool {
	for i := range e.Schedule {
		if e.Schedule[i].Status != SessionCompleted {
			return false
		}
	}
	return len(e.Schedule) > 0
}

// SessionIndexByID returns the position of the session with the given ID in
// the schedule, or -1 if no session matches.
func (e *TrainingEngagement) SessionIndexByID(sessionID primitive.ObjectID) int {
	for i := range e.Schedule {
		if e.Schedule[i].ID == sessionID {
			return i
		}
	}
	return -1
}
