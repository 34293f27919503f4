package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

// FavoriteService manages per-user application bookmarks
type FavoriteService interface {
	// Toggle flips the favorite flag and returns its new value.
	Toggle(ctx context.Context, actor authz.Actor, applicationID int64) (bool, error)
	List(ctx context.Context, actor authz.Actor) ([]*entity.Application, error)
}

type favoriteServiceImpl struct {
	favRepo port.FavoriteRepository
	appRepo port.ApplicationRepository
	policy  authz.Policy
	logger  Logger
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favRepo port.FavoriteRepository, appRepo port.ApplicationRepository, logger Logger) FavoriteService {
	return &favoriteServiceImpl{
		favRepo: favRepo,
		appRepo: appRepo,
		policy:  authz.NewPolicy(),
		logger:  logger,
	}
}

// Toggle adds the application to the actor's favorites, or removes it if
// already present
func (s *favoriteServiceImpl) Toggle(ctx context.Context, actor authz.Actor, applicationID int64) (bool, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return false, err
	}
	if !s.policy.CanView(actor, app.ApplicantID) {
		return false, fmt.Errorf("%w: not allowed to view application %d", apperr.ErrForbidden, applicationID)
	}

	existing, err := s.favRepo.Get(ctx, actor.ID, applicationID)
	if err != nil && !apperr.IsNotFound(err) {
		return false, fmt.Errorf("look up favorite: %w", err)
	}

	if existing != nil {
		if err := s.favRepo.Delete(ctx, actor.ID, applicationID); err != nil {
			s.logger.Error("Failed to remove favorite", "error", err, "user_id", actor.ID, "application_id", applicationID)
			return false, fmt.Errorf("remove favorite: %w", err)
		}
		return false, nil
	}

	fav := &entity.Favorite{
		UserID:        actor.ID,
		ApplicationID: applicationID,
		CreatedAt:     time.Now(),
	}
	if err := s.favRepo.Create(ctx, fav); err != nil {
		s.logger.Error("Failed to add favorite", "error", err, "user_id", actor.ID, "application_id", applicationID)
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}

// List returns the applications the actor has favorited
func (s *favoriteServiceImpl) List(ctx context.Context, actor authz.Actor) ([]*entity.Application, error) {
	apps, err := s.favRepo.ListApplications(ctx, actor.ID)
	if err != nil {
		s.logger.Error("Failed to list favorites", "error", err, "user_id", actor.ID)
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return apps, nil
}
