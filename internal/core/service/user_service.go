package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/opsboard/internal/core/domain"
	"github.com/99minutos/opsboard/internal/core/ports"
)

const userScope = "users"

type UserService struct {
	repo       ports.UserRepository
	replay     ReplayGuard
	replayWait time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewUserService returns a UserService. A nil replay guard disables
// Idempotency-Key handling.
func NewUserService(repo ports.UserRepository, replay ReplayGuard, logger zerolog.Logger) *UserService {
	if replay == nil {
		replay = noReplay{}
	}
	return &UserService{
		repo:       repo,
		replay:     replay,
		replayWait: defaultReplayWait,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// CreateUser validates and stores a new user. When the input carries an
// idempotency key already used, the user created by that earlier request is
// returned with replayed set and nothing is written. A concurrent request
// with the same key waits for the first one to finish.
func (s *UserService) CreateUser(ctx context.Context, in ports.CreateUserInput) (*domain.User, bool, error) {
	u := &domain.User{
		Name:      in.Name,
		Email:     in.Email,
		Role:      domain.Role(in.Role),
		Status:    domain.UserStatus(in.Status),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, false, err
	}

	c, err := claimKey(ctx, s.replay, s.logger, userScope, in.IdempotencyKey, s.replayWait)
	if err != nil {
		return nil, false, err
	}
	if c.replayID != "" {
		existing, err := s.repo.FindByID(ctx, c.replayID)
		if err == nil {
			s.logger.Info().Str("idempotency_key", in.IdempotencyKey).Str("user_id", existing.ID).Msg("idempotent replay")
			return existing, true, nil
		}
		// The original user is gone; this request takes the key over.
		s.logger.Debug().Err(err).Str("idempotency_key", in.IdempotencyKey).Msg("replayed user no longer available")
		c.held = true
	}

	if err := s.repo.Create(ctx, u); err != nil {
		c.release(ctx, s.replay, s.logger)
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			s.logger.Error().Err(err).Msg("failed to create user")
		}
		return nil, false, err
	}

	c.complete(ctx, s.replay, s.logger, u.ID)
	s.logger.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("user created")
	return u, false, nil
}

// UpdateUser applies a partial update. An empty update returns the stored
// user unchanged.
func (s *UserService) UpdateUser(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.User, error) {
	patch := domain.UserPatch{Name: in.Name, Email: in.Email}
	if in.Role != nil {
		r := domain.Role(*in.Role)
		patch.Role = &r
	}
	if in.Status != nil {
		st := domain.UserStatus(*in.Status)
		patch.Status = &st
	}
	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.repo.FindByID(ctx, id)
	}

	u, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("user updated")
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
