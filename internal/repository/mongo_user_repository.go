package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/domain"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

// upsertAttempts bounds retries when two first logins race on the unique index.
const upsertAttempts = 2

type mongoUser struct {
	ID              string     `bson:"_id"`
	ExternalID      string     `bson:"external_id"`
	Username        string     `bson:"username"`
	Email           *string    `bson:"email"`
	DisplayName     *string    `bson:"name"`
	AvatarURL       *string    `bson:"avatar_url"`
	EncryptedSecret string     `bson:"encrypted_secret"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
	LastLoginAt     *time.Time `bson:"last_login_at"`
	IsActive        bool       `bson:"is_active"`
}

// mongoUserRepository implements UserRepository on a MongoDB collection
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates the repository and ensures the unique external_id index.
func NewMongoUserRepository(ctx context.Context, db *database.Mongo, collection string) (UserRepository, error) {
	coll := db.Database.Collection(collection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("external_id_unique"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create external_id index: %w", err)
	}

	return &mongoUserRepository{collection: coll}, nil
}

// Upsert uses a single findAndModify with upsert. When two inserts race, the
// loser hits the unique index and is retried as an update.
func (r *mongoUserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	createdAt := orNow(user.CreatedAt, now)
	updatedAt := orNow(user.UpdatedAt, now)

	filter := bson.D{{Key: "external_id", Value: user.ExternalID}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "username", Value: user.Username},
			{Key: "email", Value: user.Email},
			{Key: "name", Value: user.DisplayName},
			{Key: "avatar_url", Value: user.AvatarURL},
			{Key: "encrypted_secret", Value: user.EncryptedSecret},
			{Key: "updated_at", Value: updatedAt},
			{Key: "last_login_at", Value: user.LastLoginAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "_id", Value: user.ID},
			{Key: "created_at", Value: createdAt},
			{Key: "is_active", Value: user.IsActive},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var lastErr error
	for range upsertAttempts {
		var doc mongoUser
		err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if err == nil {
			return doc.toDomain(), nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, domain.NewStorageError("upsert user", err)
		}
		lastErr = err
	}
	return nil, domain.NewStorageError("upsert user", lastErr)
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}}, id)
}

func (r *mongoUserRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "external_id", Value: externalID}}, externalID)
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.D, key string) (*domain.User, error) {
	var doc mongoUser
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("user", key)
		}
		return nil, domain.NewStorageError("get user", err)
	}
	return doc.toDomain(), nil
}

func (r *mongoUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_active", Value: active},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return domain.NewStorageError("set user active", err)
	}
	if result.MatchedCount == 0 {
		return notFound("user", id)
	}
	return nil
}

func (d mongoUser) toDomain() *domain.User {
	user := &domain.User{
		ID:              d.ID,
		ExternalID:      d.ExternalID,
		Username:        d.Username,
		Email:           d.Email,
		DisplayName:     d.DisplayName,
		AvatarURL:       d.AvatarURL,
		EncryptedSecret: d.EncryptedSecret,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
		IsActive:        d.IsActive,
	}
	if d.LastLoginAt != nil {
		t := d.LastLoginAt.UTC()
		user.LastLoginAt = &t
	}
	return user
}
