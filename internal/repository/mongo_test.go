package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

const (
	defaultTestMongoURI = "mongodb://localhost:27017"
	testMongoDatabase   = "space_biology_test"
	testMongoCollection = "users"
)

// MongoUserRepositorySuite runs the user contract against a live MongoDB.
// It is skipped when the server cannot be reached.
type MongoUserRepositorySuite struct {
	suite.Suite
	db   *database.Mongo
	repo UserRepository
}

func TestMongoUserRepositorySuite(t *testing.T) {
	suite.Run(t, new(MongoUserRepositorySuite))
}

func (s *MongoUserRepositorySuite) SetupSuite() {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = defaultTestMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := database.NewMongo(ctx, uri, testMongoDatabase)
	if err != nil {
		s.T().Skipf("mongo not available at %s: %v", uri, err)
	}
	s.db = db
}

func (s *MongoUserRepositorySuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.db.Database.Collection(testMongoCollection).Drop(ctx))

	repo, err := NewMongoUserRepository(ctx, s.db, testMongoCollection)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *MongoUserRepositorySuite) TearDownSuite() {
	if s.db == nil {
		return
	}
	ctx := context.Background()
	_ = s.db.Database.Drop(ctx)
	s.db.Close(ctx)
}

func (s *MongoUserRepositorySuite) TestUserContract() {
	runUserContract(s.T(), s.repo)
}

func (s *MongoUserRepositorySuite) TestUserConcurrentUpsert() {
	runUserConcurrentUpsert(s.T(), s.repo)
}

func (s *MongoUserRepositorySuite) TestIndexCreationIsIdempotent() {
	_, err := NewMongoUserRepository(context.Background(), s.db, testMongoCollection)
	s.NoError(err)
}
