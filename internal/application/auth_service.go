package application

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/course-subscription-api/internal/domain/entity"
	"github.com/oksasatya/course-subscription-api/pkg/apperr"
	"github.com/oksasatya/course-subscription-api/pkg/helpers"
)

type AuthService struct {
	Store    *CredentialStore
	JWT      *helpers.JWTManager
	Notifier *Notifier
	Logger   *logrus.Logger
}

func NewAuthService(store *CredentialStore, jwt *helpers.JWTManager, notifier *Notifier, logger *logrus.Logger) *AuthService {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &AuthService{Store: store, JWT: jwt, Notifier: notifier, Logger: logger}
}

// Session is the result of a successful sign in.
type Session struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *entity.User `json:"user"`
}

type SignupInput struct {
	FirstName string
	LastName  *string
	Age       *int
	Email     string
	Password  string
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// equalizeTiming burns one bcrypt comparison so an unknown email costs the
// same as a wrong password.
func equalizeTiming(candidate string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = helpers.HashPassword("timing-equalizer#1")
	})
	_ = helpers.CompareHashAndPassword(dummyHash, candidate)
}

// Validate returns the user without its password hash when email and password
// match, and nil, nil otherwise. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Validate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		equalizeTiming(password)
		return nil, nil
	}
	if !s.Store.ComparePassword(u, password) {
		return nil, nil
	}
	return u.Public(), nil
}

// IssueSession signs a token carrying the user's email and id.
func (s *AuthService) IssueSession(u *entity.User) (Session, error) {
	token, exp, err := s.JWT.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return Session{}, apperr.Internal("issue session", err)
	}
	return Session{AccessToken: token, ExpiresAt: exp, User: u.Public()}, nil
}

// Signup rejects a known email, otherwise stores the new user. The returned
// record still carries the password hash; callers strip it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*entity.User, error) {
	existing, err := s.Store.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}
	u, err := s.Store.Create(ctx, NewUser{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Age:       in.Age,
		Email:     in.Email,
		Password:  in.Password,
	})
	if err != nil {
		return nil, err
	}
	signupsTotal.Add(1)
	s.Logger.WithField("user_id", u.ID).Info("user signed up")
	s.Notifier.Welcome(ctx, u)
	return u, nil
}

// SignIn validates credentials and issues a session.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := s.Validate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if u == nil {
		signinFailures.Add(1)
		return Session{}, ErrInvalidCredentials
	}
	sess, err := s.IssueSession(u)
	if err != nil {
		return Session{}, err
	}
	signinsTotal.Add(1)
	return sess, nil
}
