package services_test

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"task-tracker/internal/models"
	"task-tracker/internal/services"
)

func (s *ServiceSuite) TestRegisterCreatesHashedDeveloper() {
	user, err := s.auth.Register(s.ctx, " Nia ", "nia@example.com", "s3cret")
	s.Require().NoError(err)

	s.Equal("Nia", user.Name)
	s.Equal(models.RoleDeveloper, user.Role)
	s.Equal(models.AttendanceAbsent, user.Attendance)
	s.NotEqual("s3cret", user.Password)
	s.True(services.VerifyPassword(user.Password, "s3cret"))
}

func (s *ServiceSuite) TestRegisterValidation() {
	_, err := s.auth.Register(s.ctx, "", "x@example.com", "pw")
	s.ErrorIs(err, services.ErrInvalidArgument)
	s.Equal("All fields required", s.errMessage(err))

	_, err = s.auth.Register(s.ctx, "Dup", "dev@example.com", "pw")
	s.ErrorIs(err, services.ErrInvalidArgument)
	s.Equal("Email exists", s.errMessage(err))
}

func (s *ServiceSuite) TestLoginTokenCarriesStoredRole() {
	_, err := s.auth.CreateAdmin(s.ctx, "Boss", "boss@example.com", "pw")
	s.Require().NoError(err)

	result, err := s.auth.Login(s.ctx, "boss@example.com", "pw")
	s.Require().NoError(err)
	s.Equal(int64(3600), result.ExpiresIn)

	principal, err := s.tokens.Verify(result.Token)
	s.Require().NoError(err)
	s.Equal("boss@example.com", principal.Email)
	s.Equal("Boss", principal.Name)
	s.Equal(models.RoleAdmin, principal.Role)
	s.Equal(result.User.Role, principal.Role)
}

func (s *ServiceSuite) TestLoginRejectsBadCredentials() {
	_, err := s.auth.Register(s.ctx, "Nia", "nia@example.com", "right")
	s.Require().NoError(err)

	_, err = s.auth.Login(s.ctx, "nia@example.com", "wrong")
	s.ErrorIs(err, services.ErrUnauthorized)
	s.Equal("Wrong credentials!", s.errMessage(err))

	_, err = s.auth.Login(s.ctx, "nobody@example.com", "right")
	s.ErrorIs(err, services.ErrUnauthorized)

	_, err = s.auth.Login(s.ctx, "", "right")
	s.ErrorIs(err, services.ErrInvalidArgument)
}

func (s *ServiceSuite) TestResetPassword() {
	_, err := s.auth.Register(s.ctx, "Nia", "nia@example.com", "old")
	s.Require().NoError(err)

	s.Require().NoError(s.auth.ResetPassword(s.ctx, "nia@example.com", "new"))

	_, err = s.auth.Login(s.ctx, "nia@example.com", "old")
	s.ErrorIs(err, services.ErrUnauthorized)
	_, err = s.auth.Login(s.ctx, "nia@example.com", "new")
	s.NoError(err)

	err = s.auth.ResetPassword(s.ctx, "ghost@example.com", "new")
	s.ErrorIs(err, services.ErrInvalidArgument)
	s.Equal("No user found with that email", s.errMessage(err))
}

func (s *ServiceSuite) TestTokenExpiresAfterOneHour() {
	_, err := s.auth.Register(s.ctx, "Nia", "nia@example.com", "pw")
	s.Require().NoError(err)
	result, err := s.auth.Login(s.ctx, "nia@example.com", "pw")
	s.Require().NoError(err)

	s.clock.Advance(59 * time.Minute)
	_, err = s.tokens.Verify(result.Token)
	s.NoError(err)

	s.clock.Advance(2 * time.Minute)
	_, err = s.tokens.Verify(result.Token)
	s.ErrorIs(err, services.ErrUnauthorized)
	s.Equal("Invalid token!", s.errMessage(err))
}

func (s *ServiceSuite) TestTokenRejectsForeignTokens() {
	claims := services.Claims{
		Email: "dev@example.com",
		Role:  models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "task-tracker",
			ExpiresAt: jwt.NewNumericDate(s.clock.Now().Add(time.Hour)),
		},
	}

	wrongSecret, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	s.Require().NoError(err)
	_, err = s.tokens.Verify(wrongSecret)
	s.ErrorIs(err, services.ErrUnauthorized)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	s.Require().NoError(err)
	_, err = s.tokens.Verify(wrongAlg)
	s.ErrorIs(err, services.ErrUnauthorized)

	foreign := claims
	foreign.Issuer = "someone-else"
	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, foreign).SignedString([]byte("test-secret"))
	s.Require().NoError(err)
	_, err = s.tokens.Verify(wrongIssuer)
	s.ErrorIs(err, services.ErrUnauthorized)

	_, err = s.tokens.Verify("not-a-token")
	s.ErrorIs(err, services.ErrUnauthorized)
}
