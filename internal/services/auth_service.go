package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/auth"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
	tokens   auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, hasher auth.PasswordHasher, tokens auth.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new user.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, ErrRegistrationFieldsRequired
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(username, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.userRepo.Create(user); err != nil {
		// A concurrent registration won the unique index.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and issues an access token. Unknown users and
// wrong passwords fail the same way.
func (s *AuthService) Login(input LoginInput) (string, *models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return "", nil, ErrLoginFieldsRequired
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, input.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return token, user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	if id == 0 {
		return nil, ErrUnauthenticated
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
