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

const transactionCollectionName = "transactions"

// mongoTransactionRepository implements repository.TransactionRepository
type mongoTransactionRepository struct {
	collection *mongo.Collection
}

// NewMongoTransactionRepository creates a new transaction repository backed by MongoDB.
func NewMongoTransactionRepository(db *mongo.Database) repository.TransactionRepository {
	return &mongoTransactionRepository{
		collection: db.Collection(transactionCollectionName),
	}
}

// Create inserts a new membership transaction.
func (r *mongoTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (primitive.ObjectID, error) {
	if tx.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("transaction requires userId")
	}

	tx.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tx.CreatedAt = now
	if tx.SubscribedDate.IsZero() {
		tx.SubscribedDate = now
	}

	result, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted transaction ID")
	}

	return insertedID, nil
}

// List retrieves all transactions, newest subscription first.
func (r *mongoTransactionRepository) List(ctx context.Context) ([]domain.Transaction, error) {
	return r.find(ctx, bson.M{})
}

// ListByUser retrieves a single member's transactions.
func (r *mongoTransactionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Transaction, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoTransactionRepository) find(ctx context.Context, filter bson.M) ([]domain.Transaction, error) {
	var transactions []domain.Transaction
	findOptions := options.Find().SetSort(bson.D{{Key: "subscribedDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// SalesTotal sums Amount over transactions subscribed at or after since.
func (r *mongoTransactionRepository) SalesTotal(ctx context.Context, since time.Time) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"subscribedDate": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "totalSales": bson.M{"$sum": "$amount"}}}},
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

// EnsureTransactionIndexes creates necessary indexes for the transactions collection.
func EnsureTransactionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "subscribedDate", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
