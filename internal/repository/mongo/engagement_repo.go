package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/CarlJazper/PSPWEB/internal/domain"
	"github.com/CarlJazper/PSPWEB/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const engagementCollectionName = "engagements"

// mongoEngagementRepository implements repository.EngagementRepository
type mongoEngagementRepository struct {
	collection *mongo.Collection
}

// NewMongoEngagementRepository creates a new engagement repository backed by MongoDB.
func NewMongoEngagementRepository(db *mongo.Database) repository.EngagementRepository {
	return &mongoEngagementRepository{
		collection: db.Collection(engagementCollectionName),
	}
}

// Create inserts a new engagement. The schedule must already be built by the
// caller and match SessionsTotal; it is immutable in size from here on.
func (r *mongoEngagementRepository) Create(ctx context.Context, engagement *domain.TrainingEngagement) (primitive.ObjectID, error) {
	if engagement.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("engagement requires clientId")
	}
	if len(engagement.Schedule) != engagement.SessionsTotal {
		return primitive.NilObjectID, errors.New("schedule length must equal sessionsTotal")
	}

	engagement.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	engagement.CreatedAt = now
	engagement.UpdatedAt = now
	engagement.Revision = 0
	if engagement.Status == "" {
		engagement.Status = domain.EngagementActive
	}

	result, err := r.collection.InsertOne(ctx, engagement)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted engagement ID")
	}

	return insertedID, nil
}

// GetByID retrieves an engagement by its ID.
func (r *mongoEngagementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingEngagement, error) {
	var engagement domain.TrainingEngagement
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&engagement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &engagement, nil
}

// List retrieves all engagements, newest-created first.
func (r *mongoEngagementRepository) List(ctx context.Context) ([]domain.TrainingEngagement, error) {
	return r.find(ctx, bson.M{})
}

// ListByCoach retrieves all engagements assigned to a coach.
func (r *mongoEngagementRepository) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.TrainingEngagement, error) {
	return r.find(ctx, bson.M{"coachId": coachID})
}

// ListByClient retrieves all engagements purchased by a client.
func (r *mongoEngagementRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.TrainingEngagement, error) {
	return r.find(ctx, bson.M{"clientId": clientID})
}

func (r *mongoEngagementRepository) find(ctx context.Context, filter bson.M) ([]domain.TrainingEngagement, error) {
	var engagements []domain.TrainingEngagement
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &engagements); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return engagements, nil
}

// Patch applies a generic field update. Nil patch fields are left untouched.
// Note this is deliberately last-write-wins admin tooling; the revision
// guard applies only to schedule writes.
func (r *mongoEngagementRepository) Patch(ctx context.Context, id primitive.ObjectID, patch repository.EngagementPatch) error {
	updateFields := bson.M{"updatedAt": time.Now().UTC()}
	if patch.CoachID != nil {
		updateFields["coachId"] = *patch.CoachID
	}
	if patch.SessionsTotal != nil {
		updateFields["sessionsTotal"] = *patch.SessionsTotal
	}
	if patch.SessionRate != nil {
		updateFields["sessionRate"] = *patch.SessionRate
	}
	if patch.TotalAmount != nil {
		updateFields["totalAmount"] = *patch.TotalAmount
	}
	if patch.PackageLabel != nil {
		updateFields["packageLabel"] = *patch.PackageLabel
	}
	if patch.Status != nil {
		updateFields["status"] = *patch.Status
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updateFields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes the whole engagement record.
func (r *mongoEngagementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// FindActiveByClient returns the client's engagement with status active, or
// ErrNotFound when the client has none.
func (r *mongoEngagementRepository) FindActiveByClient(ctx context.Context, clientID primitive.ObjectID) (*domain.TrainingEngagement, error) {
	var engagement domain.TrainingEngagement
	filter := bson.M{"clientId": clientID, "status": domain.EngagementActive}

	err := r.collection.FindOne(ctx, filter).Decode(&engagement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &engagement, nil
}

// UpdateSchedule persists a mutated schedule and parent status, guarded by
// the revision counter. The filter matches both _id and revision, so a
// concurrent writer that already bumped the revision makes this a no-match;
// we then distinguish a stale revision from a missing document.
func (r *mongoEngagementRepository) UpdateSchedule(ctx context.Context, id primitive.ObjectID, revision int64, schedule []domain.Session, status domain.EngagementStatus) error {
	filter := bson.M{"_id": id, "revision": revision}
	update := bson.M{
		"$set": bson.M{
			"schedule":  schedule,
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
		"$inc": bson.M{"revision": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if count == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

// salesGroup is the output shape of the sales aggregation pipelines.
type salesGroup struct {
	TotalSales float64 `bson:"totalSales"`
}

// SalesTotal sums TotalAmount over engagements created at or after since.
func (r *mongoEngagementRepository) SalesTotal(ctx context.Context, since time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "totalSales": bson.M{"$sum": "$totalAmount"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var groups []salesGroup
	if err = cursor.All(ctx, &groups); err != nil {
		return 0, err
	}
	if len(groups) == 0 {
		return 0, nil
	}
	return groups[0].TotalSales, nil
}

// EnsureEngagementIndexes creates necessary indexes for the engagements collection.
func EnsureEngagementIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			// has-active lookups filter on both
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			// list ordering and sales bucketing
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
