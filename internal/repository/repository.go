package repository

import (
	"context"
	"fmt"

	"github.com/Shreyas-prog108/nasa-biology-engine/internal/config"
	"github.com/Shreyas-prog108/nasa-biology-engine/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User    UserRepository
	Account AccountRepository
	Session SessionRepository
}

// Backends carries the opened storage connections. Only those named by the
// storage configuration need to be set.
type Backends struct {
	Postgres        *database.Postgres
	Mongo           *database.Mongo
	MongoCollection string
	Bolt            *database.Bolt
}

// NewRepositories builds the repositories selected by the storage configuration
func NewRepositories(ctx context.Context, storage config.StorageConfig, backends Backends) (*Repositories, error) {
	repos := &Repositories{}

	switch storage.UsersDriver {
	case config.DriverPostgres:
		if backends.Postgres == nil {
			return nil, fmt.Errorf("users driver %q requires a postgres connection", storage.UsersDriver)
		}
		repos.User = NewPostgresUserRepository(backends.Postgres)
	case config.DriverMongo:
		if backends.Mongo == nil {
			return nil, fmt.Errorf("users driver %q requires a mongo connection", storage.UsersDriver)
		}
		users, err := NewMongoUserRepository(ctx, backends.Mongo, backends.MongoCollection)
		if err != nil {
			return nil, err
		}
		repos.User = users
	case config.DriverMemory:
		repos.User = NewMemoryUserRepository()
	default:
		return nil, fmt.Errorf("unknown users driver %q", storage.UsersDriver)
	}

	switch storage.AccountsDriver {
	case config.DriverPostgres:
		if backends.Postgres == nil {
			return nil, fmt.Errorf("accounts driver %q requires a postgres connection", storage.AccountsDriver)
		}
		repos.Account = NewPostgresAccountRepository(backends.Postgres)
		repos.Session = NewPostgresSessionRepository(backends.Postgres)
	case config.DriverBolt:
		if backends.Bolt == nil {
			return nil, fmt.Errorf("accounts driver %q requires a bolt database", storage.AccountsDriver)
		}
		repos.Account = NewBoltAccountRepository(backends.Bolt)
		repos.Session = NewBoltSessionRepository(backends.Bolt)
	case config.DriverMemory:
		repos.Account = NewMemoryAccountRepository()
		repos.Session = NewMemorySessionRepository()
	default:
		return nil, fmt.Errorf("unknown accounts driver %q", storage.AccountsDriver)
	}

	return repos, nil
}
