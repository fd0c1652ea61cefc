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

const branchCollectionName = "branches"

// mongoBranchRepository implements repository.BranchRepository
type mongoBranchRepository struct {
	collection *mongo.Collection
}

// NewMongoBranchRepository creates a new branch repository backed by MongoDB.
func NewMongoBranchRepository(db *mongo.Database) repository.BranchRepository {
	return &mongoBranchRepository{
		collection: db.Collection(branchCollectionName),
	}
}

// Create inserts a new branch into the database.
func (r *mongoBranchRepository) Create(ctx context.Context, branch *domain.Branch) (primitive.ObjectID, error) {
	if branch.Name == "" {
		return primitive.NilObjectID, errors.New("branch name is required")
	}

	branch.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	branch.CreatedAt = now
	branch.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, branch)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a branch by its ID.
func (r *mongoBranchRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Branch, error) {
	var branch domain.Branch
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&branch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &branch, nil
}

// List retrieves all branches, alphabetically.
func (r *mongoBranchRepository) List(ctx context.Context) ([]domain.Branch, error) {
	var branches []domain.Branch
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &branches); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return branches, nil
}

// Update modifies an existing branch.
func (r *mongoBranchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	if branch.ID == primitive.NilObjectID {
		return errors.New("branch ID is required for update")
	}
	if branch.Name == "" {
		return errors.New("branch name cannot be empty")
	}

	filter := bson.M{"_id": branch.ID}
	update := bson.M{
		"$set": bson.M{
			"name":      branch.Name,
			"email":     branch.Email,
			"contact":   branch.Contact,
			"place":     branch.Place,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a branch.
func (r *mongoBranchRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
