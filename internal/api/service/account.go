package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/domain"
	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/internal/auth"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
	UserSearchLimit   = 20
)

// TokenIssuer is satisfied by *auth.JWTManager.
type TokenIssuer interface {
	GenerateToken(userID int64, username string, role domain.Role) (string, time.Time, error)
}

type AccountService struct {
	logger *slog.Logger
	store  *storage.Storage
	tokens TokenIssuer
	clock  Clock
}

func NewAccountService(deps Dependencies, tokens TokenIssuer) *AccountService {
	return &AccountService{
		logger: deps.Logger,
		store:  deps.Storage,
		tokens: tokens,
		clock:  deps.Clock,
	}
}

type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	Role            string
	FullName        string
}

// AuthResult is a user together with a freshly issued access token.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

func (in RegisterInput) validate() (domain.Role, error) {
	if strings.TrimSpace(in.Username) == "" {
		return domain.RoleUnknown, domain.NewValidationError("username", "This field may not be blank.")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return domain.RoleUnknown, domain.NewValidationError("email", "Enter a valid email address.")
	}
	if len(in.Password) < MinPasswordLength {
		return domain.RoleUnknown, domain.NewValidationError("password", "Ensure this field has at least 8 characters.")
	}
	// bcrypt refuses anything longer.
	if len(in.Password) > MaxPasswordLength {
		return domain.RoleUnknown, domain.NewValidationError("password", "Ensure this field has no more than 72 bytes.")
	}
	if in.Password != in.PasswordConfirm {
		return domain.RoleUnknown, domain.NewValidationError("password", "Passwords do not match.")
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil || (role != domain.RoleEmployer && role != domain.RoleJobSeeker) {
		return domain.RoleUnknown, domain.NewValidationError("role", "Role must be employer or job_seeker.")
	}

	return role, nil
}

// Register creates an employer or job seeker account and signs it in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	role, err := input.validate()
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		FullName:     strings.TrimSpace(input.FullName),
		CreatedAt:    s.clock.now(),
	}

	err = s.store.WithTx(ctx, func(tx *storage.Storage) error {
		taken, err := tx.UsernameExists(ctx, user.Username)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewValidationError("username", "A user with that username already exists.")
		}

		taken, err = tx.EmailExists(ctx, user.Email)
		if err != nil {
			return err
		}
		if taken {
			return domain.NewValidationError("email", "This email is already registered.")
		}

		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		slog.Int64("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)

	return s.issue(user)
}

// Login checks the password and issues a token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AccountService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AccountService) Me(ctx context.Context, actor domain.Identity) (*model.User, error) {
	return s.store.GetUserByID(ctx, actor.UserID)
}

// Search finds message recipients by username, full name or email. A blank
// term returns nothing rather than every user.
func (s *AccountService) Search(ctx context.Context, actor domain.Identity, term string) ([]model.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.User{}, nil
	}
	return s.store.SearchUsers(ctx, term, actor.UserID, UserSearchLimit)
}
