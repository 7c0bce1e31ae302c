package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"anoa.com/plantspeak/internal/entity"
	"anoa.com/plantspeak/internal/i18n"
	"anoa.com/plantspeak/internal/modules/user/dto"
	"anoa.com/plantspeak/internal/modules/user/repository"
	"anoa.com/plantspeak/internal/session"
	"anoa.com/plantspeak/pkg/apperror"
	"anoa.com/plantspeak/pkg/ratelimiter"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes and refuses longer input.
	maxPasswordLength = 72
	actionRegister    = "register"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ContributionCounter reports how many submissions a user owns.
type ContributionCounter interface {
	CountByOwner(ctx context.Context, userID uint) (int64, error)
}

type UserService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error)
	Authenticate(ctx context.Context, username, password string) (bool, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint, input dto.UpdateProfileInput) (*dto.ProfileResponse, error)
	FindByID(ctx context.Context, userID uint) (*entity.User, error)
}

type userService struct {
	repo             repository.UserRepository
	contributions    ContributionCounter
	tokens           *session.Tokens
	limiter          *ratelimiter.Limiter
	registerCooldown time.Duration
	logger           *zap.Logger
	hashCost         int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewUserService(
	repo repository.UserRepository,
	contributions ContributionCounter,
	tokens *session.Tokens,
	limiter *ratelimiter.Limiter,
	registerCooldown time.Duration,
	logger *zap.Logger,
) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		repo:             repo,
		contributions:    contributions,
		tokens:           tokens,
		limiter:          limiter,
		registerCooldown: registerCooldown,
		logger:           logger,
		hashCost:         bcrypt.DefaultCost,
	}
}

func (s *userService) Register(ctx context.Context, input dto.RegisterInput) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if err := validateRegistration(username, email, input.Password, input.PasswordConfirm); err != nil {
		return nil, err
	}

	subject := ""
	if input.ClientIP != "" {
		subject = ratelimiter.IPSubject(input.ClientIP)
		allowed, wait, err := s.limiter.Allow(ctx, subject, actionRegister, s.registerCooldown)
		if err != nil {
			s.logger.Warn("registration rate limit check failed", zap.Error(err))
			subject = ""
		} else if !allowed {
			return nil, fmt.Errorf("%w: retry in %s", apperror.ErrRateLimitExceeded, wait.Round(time.Second))
		}
	}

	user, err := s.createUser(ctx, username, email, input)
	if err != nil {
		s.clearLimit(ctx, subject)
		return nil, err
	}

	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return s.buildAuthResponse(user)
}

func (s *userService) createUser(ctx context.Context, username, email string, input dto.RegisterInput) (*entity.User, error) {
	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, i18n.Wrap(i18n.ErrUsernameTaken, fmt.Errorf("%w: username %q", apperror.ErrConflict, username))
	}
	if email != "" {
		taken, err := s.repo.EmailTaken(ctx, email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, i18n.Wrap(i18n.ErrEmailTaken, fmt.Errorf("%w: email", apperror.ErrConflict))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(input.Name),
		Role:         strings.TrimSpace(input.Role),
		Community:    strings.TrimSpace(input.Community),
	}
	if email != "" {
		user.Email = &email
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, s.conflictKey(ctx, username, email, err)
		}
		return nil, err
	}
	return user, nil
}

// conflictKey names the unique column a concurrent registration won.
func (s *userService) conflictKey(ctx context.Context, username, email string, err error) error {
	if taken, lookupErr := s.repo.UsernameTaken(ctx, username); lookupErr == nil && taken {
		return i18n.Wrap(i18n.ErrUsernameTaken, err)
	}
	if email != "" {
		if taken, lookupErr := s.repo.EmailTaken(ctx, email, 0); lookupErr == nil && taken {
			return i18n.Wrap(i18n.ErrEmailTaken, err)
		}
	}
	return i18n.Wrap(i18n.ErrConflict, err)
}

func (s *userService) clearLimit(ctx context.Context, subject string) {
	if subject == "" {
		return
	}
	if err := s.limiter.Clear(ctx, subject, actionRegister); err != nil {
		s.logger.Warn("failed to clear registration rate limit", zap.Error(err))
	}
}

// Authenticate verifies a password. Unknown usernames are checked against a
// fixed hash so both failure paths cost one bcrypt comparison.
func (s *userService) Authenticate(ctx context.Context, username, password string) (bool, error) {
	_, ok, err := s.verify(ctx, username, password)
	return ok, err
}

func (s *userService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, ok, err := s.verify(ctx, input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, i18n.Wrap(i18n.ErrInvalidCredentials, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized))
	}
	return s.buildAuthResponse(user)
}

func (s *userService) verify(ctx context.Context, username, password string) (*entity.User, bool, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, false, nil
		}
		return nil, false, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, false, nil
	}
	return user, true, nil
}

func (s *userService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("plantspeak-unknown-user"), s.hashCost)
	})
	return s.dummyHash
}

func (s *userService) FindByID(ctx context.Context, userID uint) (*entity.User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &dto.ProfileResponse{UserResponse: *dto.NewUserResponse(user)}
	if s.contributions != nil {
		count, err := s.contributions.CountByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		res.ContributionCount = count
	}
	return res, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, input dto.UpdateProfileInput) (*dto.ProfileResponse, error) {
	changes := repository.NewProfileChanges()

	if input.Name != nil {
		changes.SetName(strings.TrimSpace(*input.Name))
	}
	if input.Role != nil {
		changes.SetRole(strings.TrimSpace(*input.Role))
	}
	if input.Community != nil {
		changes.SetCommunity(strings.TrimSpace(*input.Community))
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			changes.SetEmail(nil)
		} else {
			if !emailPattern.MatchString(email) {
				return nil, i18n.Wrap(i18n.ErrInvalidEmail, fmt.Errorf("%w: email", apperror.ErrInvalidInput))
			}
			taken, err := s.repo.EmailTaken(ctx, email, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, i18n.Wrap(i18n.ErrEmailTaken, fmt.Errorf("%w: email", apperror.ErrConflict))
			}
			changes.SetEmail(&email)
		}
	}

	if input.Password != nil && *input.Password != "" {
		confirm := ""
		if input.PasswordConfirm != nil {
			confirm = *input.PasswordConfirm
		}
		if err := validatePassword(*input.Password, confirm); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), s.hashCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		changes.SetPasswordHash(string(hash))
	}

	if err := s.repo.Update(ctx, userID, changes); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, i18n.Wrap(i18n.ErrEmailTaken, err)
		}
		return nil, err
	}
	if !changes.Empty() {
		s.logger.Info("profile updated", zap.Uint("user_id", userID), zap.Strings("columns", changes.Columns()))
	}

	return s.GetProfile(ctx, userID)
}

func (s *userService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.Unix(),
		User:        dto.NewUserResponse(user),
	}, nil
}

func validateRegistration(username, email, password, confirm string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", apperror.ErrInvalidInput)
	}
	if len(username) < 3 || len(username) > 50 {
		return fmt.Errorf("%w: username must be 3 to 50 characters", apperror.ErrInvalidInput)
	}
	if email != "" && !emailPattern.MatchString(email) {
		return i18n.Wrap(i18n.ErrInvalidEmail, fmt.Errorf("%w: email", apperror.ErrInvalidInput))
	}
	return validatePassword(password, confirm)
}

func validatePassword(password, confirm string) error {
	if len(password) < minPasswordLength {
		return i18n.Wrap(i18n.ErrPasswordTooShort, fmt.Errorf("%w: password too short", apperror.ErrInvalidInput))
	}
	if len(password) > maxPasswordLength {
		return i18n.Wrap(i18n.ErrPasswordTooLong, fmt.Errorf("%w: password longer than %d bytes", apperror.ErrInvalidInput, maxPasswordLength))
	}
	if password != confirm {
		return i18n.Wrap(i18n.ErrPasswordMismatch, fmt.Errorf("%w: passwords do not match", apperror.ErrInvalidInput))
	}
	return nil
}
