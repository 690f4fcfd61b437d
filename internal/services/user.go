package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/beerbuddy/beerbuddy/internal/apperrors"
	"github.com/beerbuddy/beerbuddy/internal/auth"
	"github.com/beerbuddy/beerbuddy/internal/models"
	"github.com/beerbuddy/beerbuddy/internal/repository"
	"github.com/beerbuddy/beerbuddy/pkg/logger"
	"github.com/beerbuddy/beerbuddy/pkg/queue"
)

type UserService struct {
	users  UserStore
	agg    *Aggregator
	hasher PasswordHasher
	tokens TokenIssuer
	events eventSink
	logger *logger.Logger

	dummyMu   sync.Mutex
	dummyHash string
}

func NewUserService(users UserStore, agg *Aggregator, hasher PasswordHasher, tokens TokenIssuer, publisher EventPublisher, logger *logger.Logger) *UserService {
	return &UserService{
		users:  users,
		agg:    agg,
		hasher: hasher,
		tokens: tokens,
		events: eventSink{publisher: publisher, logger: logger},
		logger: logger,
	}
}

type SignupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
	Nickname *string `json:"nickname"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *UserService) Signup(ctx context.Context, req *SignupRequest) (*models.AuthPayload, error) {
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	nickname := trimToNull(req.Nickname)
	if err := validateMaxLength(nickname, maxNicknameLength, "Nickname must be 50 characters or less"); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		// same message as a failed login so the address is not confirmed
		return nil, apperrors.Conflict(msgInvalidCredentials)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Password: hash,
		Name:     trimToNull(req.Name),
		Nickname: nickname,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.KindConflict, msgInvalidCredentials, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.events.publish(ctx, user.ID, queue.EventUserCreated, queue.UserEventData{UserID: user.ID, Email: user.Email})
	s.logger.WithField("user_id", user.ID).Info("User signed up successfully")

	// a brand-new user has no follows or posts yet
	return &models.AuthPayload{Token: token, User: models.UserProfile{User: *user}}, nil
}

func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*models.AuthPayload, error) {
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		// burn the same hashing work as a real check
		hash, err := s.placeholderHash()
		if err != nil {
			s.logger.WithError(err).Error("Failed to build placeholder password hash")
		} else {
			s.hasher.Verify(hash, req.Password)
		}
		return nil, apperrors.Unauthenticated(msgInvalidCredentials)
	}

	if !s.hasher.Verify(user.Password, req.Password) {
		return nil, apperrors.Unauthenticated(msgInvalidCredentials)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	profile, err := s.agg.Profile(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in successfully")
	return &models.AuthPayload{Token: token, User: profile}, nil
}

// placeholderHash is computed on first use and cached once it succeeds.
func (s *UserService) placeholderHash() (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash == "" {
		hash, err := s.hasher.Hash("placeholder-password")
		if err != nil {
			return "", err
		}
		s.dummyHash = hash
	}
	return s.dummyHash, nil
}

func (s *UserService) Me(ctx context.Context, viewer auth.Viewer) (*models.UserProfile, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, viewer.UserID)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.UserProfile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound(msgUserNotFound)
	}

	profile, err := s.agg.Profile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *UserService) ListUsers(ctx context.Context) (*models.UserList, error) {
	users, err := s.users.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	profiles, err := s.agg.Profiles(ctx, users)
	if err != nil {
		return nil, err
	}
	return &models.UserList{Users: profiles, TotalCount: len(profiles)}, nil
}

// UpdateProfile changes only the fields present in req. Present fields are
// trimmed and stored as NULL when empty.
func (s *UserService) UpdateProfile(ctx context.Context, viewer auth.Viewer, req *models.ProfileUpdate) (*models.UserProfile, error) {
	if err := RequireViewer(viewer); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Nickname != nil {
		nickname := trimToNull(req.Nickname)
		if err := validateMaxLength(nickname, maxNicknameLength, "Nickname must be 50 characters or less"); err != nil {
			return nil, err
		}
		fields["nickname"] = nickname
	}
	if req.Bio != nil {
		bio := trimToNull(req.Bio)
		if err := validateMaxLength(bio, maxBioLength, "Bio must be 500 characters or less"); err != nil {
			return nil, err
		}
		fields["bio"] = bio
	}
	if req.ProfilePicture != nil {
		fields["profile_picture"] = trimToNull(req.ProfilePicture)
	}

	user, err := s.users.Update(ctx, viewer.UserID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if user == nil {
		return nil, apperrors.NotFound(msgUserNotFound)
	}

	profile, err := s.agg.Profile(ctx, user)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		s.events.publish(ctx, user.ID, queue.EventUserUpdated, queue.UserEventData{UserID: user.ID})
		s.logger.WithField("user_id", user.ID).Info("Profile updated successfully")
	}
	return &profile, nil
}
