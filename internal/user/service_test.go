package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	jwttoken "olea/internal/jwt_token"
	"olea/internal/user"
	"olea/internal/user/store"
	id "olea/pkg/domain"
	dErrors "olea/pkg/domain-errors"
)

type UserServiceSuite struct {
	suite.Suite
	ctx context.Context
	svc *user.Service
}

func (s *UserServiceSuite) SetupTest() {
	s.ctx = context.Background()
	tokens := jwttoken.NewJWTService("test-signing-key", "olea", "olea")
	s.svc = user.NewService(store.NewInMemory(), tokens, time.Hour)
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) TestCreate() {
	s.Run("creates an account with a hashed password", func() {
		u, err := s.svc.Create(s.ctx, "Alice@Example.com", "Alice", "hunter2hunter2")
		s.Require().NoError(err)
		s.Equal("alice@example.com", u.Email)
		s.NotEmpty(u.PasswordHash)
		s.NotEqual("hunter2hunter2", u.PasswordHash)
	})

	s.Run("duplicate email conflicts", func() {
		_, err := s.svc.Create(s.ctx, "bob@example.com", "Bob", "hunter2hunter2")
		s.Require().NoError(err)

		_, err = s.svc.Create(s.ctx, "BOB@example.com", "Bobby", "hunter2hunter2")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("rejects malformed emails", func() {
		_, err := s.svc.Create(s.ctx, "not-an-email", "X", "hunter2hunter2")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("rejects short passwords", func() {
		_, err := s.svc.Create(s.ctx, "carol@example.com", "Carol", "short")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *UserServiceSuite) TestLogin() {
	_, err := s.svc.Create(s.ctx, "dave@example.com", "Dave", "hunter2hunter2")
	s.Require().NoError(err)

	s.Run("issues a validating token for good credentials", func() {
		token, u, err := s.svc.Login(s.ctx, "dave@example.com", "hunter2hunter2")
		s.Require().NoError(err)
		s.NotEmpty(token)
		s.Equal("dave@example.com", u.Email)

		claims, err := jwttoken.NewJWTService("test-signing-key", "olea", "olea").ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(u.ID.String(), claims.UserID)
		s.Equal(u.Email, claims.Email)
	})

	s.Run("wrong password is unauthorized", func() {
		_, _, err := s.svc.Login(s.ctx, "dave@example.com", "wrong-password")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown email is unauthorized, not not-found", func() {
		_, _, err := s.svc.Login(s.ctx, "ghost@example.com", "whatever123")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.False(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *UserServiceSuite) TestUpdateAndDelete() {
	u, err := s.svc.Create(s.ctx, "erin@example.com", "Erin", "hunter2hunter2")
	s.Require().NoError(err)

	s.Run("updates the name", func() {
		got, err := s.svc.Update(s.ctx, u.ID, "Erin B", "")
		s.Require().NoError(err)
		s.Equal("Erin B", got.Name)
	})

	s.Run("password change invalidates the old one", func() {
		_, err := s.svc.Update(s.ctx, u.ID, "", "newpassword123")
		s.Require().NoError(err)

		_, _, err = s.svc.Login(s.ctx, "erin@example.com", "hunter2hunter2")
		s.Require().Error(err)

		_, _, err = s.svc.Login(s.ctx, "erin@example.com", "newpassword123")
		s.NoError(err)
	})

	s.Run("delete removes the account", func() {
		s.Require().NoError(s.svc.Delete(s.ctx, u.ID))
		_, err := s.svc.Get(s.ctx, u.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("delete of unknown user is not found", func() {
		err := s.svc.Delete(s.ctx, id.NewUserID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
