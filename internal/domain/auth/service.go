// Package auth registers accounts, checks credentials and issues bearer
// tokens. A new account starts with a default set of categories and payment
// methods.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/family-ledger/internal/domain/common"
)

// PasswordCost is the bcrypt work factor for stored passwords.
const PasswordCost = 12

// Credentials is the body of both register and login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Account is the public view of a user.
type Account struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// Session is returned by register and login.
type Session struct {
	User  Account `json:"user"`
	Token string  `json:"token"`
}

type Service struct {
	repo   AuthRepository
	tokens *TokenManager
	logger *slog.Logger
	cost   int

	// dummyHash is compared against for unknown emails.
	dummyHash []byte
}

func NewService(repo AuthRepository, tokens *TokenManager, logger *slog.Logger) *Service {
	return (&Service{repo: repo, tokens: tokens, logger: logger}).WithCost(PasswordCost)
}

// WithCost sets the bcrypt cost for new hashes.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return s
}

func normalize(in Credentials) (Credentials, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := common.Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

// Register creates the account with its defaults and signs the user in.
func (s *Service) Register(ctx context.Context, in Credentials) (*Session, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, common.Conflict("User already exists", 0)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, in.Email, string(hash))
	if err != nil {
		var conflict *common.ConflictError
		if errors.As(err, &conflict) {
			return nil, common.Conflict("User already exists", 0)
		}
		return nil, err
	}

	s.logger.Info("account registered", slog.String("user_id", user.ID.String()))
	return s.session(user)
}

// Login checks the credentials. Unknown emails and wrong passwords both
// return common.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, in Credentials) (*Session, error) {
	in, err := normalize(in)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
			return nil, common.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.logger.Warn("login rejected", slog.String("user_id", user.ID.String()))
		return nil, common.ErrUnauthorized
	}

	return s.session(user)
}

func (s *Service) session(user *User) (*Session, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: Account{ID: user.ID, Email: user.Email}, Token: token}, nil
}
