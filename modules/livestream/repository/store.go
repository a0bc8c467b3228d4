package repository

import (
	"context"
	"time"

	"livestream-api/core/database"
	tagrepo "livestream-api/modules/tag/repository"
	userrepo "livestream-api/modules/user/repository"

	"github.com/jmoiron/sqlx"
)

// Repositories groups the repositories bound to one database handle, either
// the pool or a single transaction.
type Repositories struct {
	Slots       SlotRepositoryInterface
	Livestreams LivestreamRepositoryInterface
	Users       userrepo.UserRepositoryInterface
	Tags        tagrepo.TagRepositoryInterface
	Viewers     ViewerRepositoryInterface
}

func NewRepositories(db sqlx.ExtContext) Repositories {
	return Repositories{
		Slots:       NewSlotRepository(db),
		Livestreams: NewLivestreamRepository(db),
		Users:       userrepo.NewUserRepository(db),
		Tags:        tagrepo.NewTagRepository(db),
		Viewers:     NewViewerRepository(db),
	}
}

// Store hands out repositories. RunInTx commits only when fn returns nil;
// every other exit rolls back and releases the row locks taken inside fn.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Reader() Repositories
}

type PostgresStore struct {
	db          *database.Database
	lockTimeout time.Duration
}

func NewPostgresStore(db *database.Database, lockTimeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, lockTimeout: lockTimeout}
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return s.db.WithTx(ctx, nil, func(tx *sqlx.Tx) error {
		if err := database.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
			return err
		}
		return fn(ctx, NewRepositories(tx))
	})
}

func (s *PostgresStore) Reader() Repositories {
	return NewRepositories(s.db.SQLx())
}
