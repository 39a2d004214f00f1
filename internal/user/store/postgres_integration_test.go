//go:build integration

package store_test

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"olea/internal/user"
	"olea/internal/user/store"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
	"olea/pkg/testutil/containers"
)

type PostgresUserStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresUserStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresUserStoreSuite))
}

func (s *PostgresUserStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)

	err := s.store.Migrate(context.Background())
	s.Require().NoError(err)
}

func (s *PostgresUserStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "users")
	s.Require().NoError(err)
}

func newTestUser(email string) *user.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &user.User{
		ID:           id.NewUserID(),
		Email:        email,
		Name:         "Test Agent",
		PasswordHash: "$2a$10$notarealbcrypthashbutlongenough",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresUserStoreSuite) TestCreateAndGet() {
	ctx := context.Background()

	u := newTestUser("agent-" + uuid.NewString() + "@olea.test")
	err := s.store.Create(ctx, u)
	s.Require().NoError(err)

	found, err := s.store.Get(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, found.Email)
	s.Equal(u.Name, found.Name)
	s.Equal(u.PasswordHash, found.PasswordHash)
}

// TestConcurrentDuplicateEmail verifies the unique index lets exactly one
// concurrent create through.
func (s *PostgresUserStoreSuite) TestConcurrentDuplicateEmail() {
	ctx := context.Background()
	email := "race-" + uuid.NewString() + "@olea.test"
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			u := newTestUser(email)
			err := s.store.Create(ctx, u)
			if err == nil {
				successCount.Add(1)
			} else if dErrors.HasCode(err, dErrors.CodeConflict) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one create should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")
}

// TestCaseInsensitiveLookup verifies GetByEmail matches regardless of case.
func (s *PostgresUserStoreSuite) TestCaseInsensitiveLookup() {
	ctx := context.Background()
	email := "mixed-" + uuid.NewString() + "@olea.test"

	u := newTestUser(email)
	err := s.store.Create(ctx, u)
	s.Require().NoError(err)

	for _, lookup := range []string{email, strings.ToUpper(email)} {
		found, err := s.store.GetByEmail(ctx, lookup)
		s.Require().NoError(err, "GetByEmail(%q)", lookup)
		s.Equal(u.ID, found.ID)
	}
}

func (s *PostgresUserStoreSuite) TestNotFoundError() {
	ctx := context.Background()

	_, err := s.store.Get(ctx, id.NewUserID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.store.GetByEmail(ctx, "ghost-"+uuid.NewString()+"@olea.test")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.store.Update(ctx, newTestUser("ghost@olea.test"))
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	err = s.store.Delete(ctx, id.NewUserID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresUserStoreSuite) TestUpdateAndDelete() {
	ctx := context.Background()

	u := newTestUser("update-" + uuid.NewString() + "@olea.test")
	err := s.store.Create(ctx, u)
	s.Require().NoError(err)

	u.Name = "Renamed Agent"
	u.PasswordHash = "$2a$10$anotherhashvalueforupdate"
	u.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	err = s.store.Update(ctx, u)
	s.Require().NoError(err)

	found, err := s.store.Get(ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("Renamed Agent", found.Name)
	s.Equal(u.PasswordHash, found.PasswordHash)

	err = s.store.Delete(ctx, u.ID)
	s.Require().NoError(err)

	_, err = s.store.Get(ctx, u.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresUserStoreSuite) TestList() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u := newTestUser("list-" + uuid.NewString() + "@olea.test")
		err := s.store.Create(ctx, u)
		s.Require().NoError(err)
	}

	listed, err := s.store.List(ctx, 10)
	s.Require().NoError(err)
	s.Len(listed, 3)

	limited, err := s.store.List(ctx, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}
