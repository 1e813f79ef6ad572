package user

import (
	"context"
	"flavorpal-backend/domain"
	"flavorpal-backend/entities"
	"github.com/google/uuid"
	"strings"
)

type (
	UserService interface {
		GetHealthFlags(ctx context.Context, userID string) ([]string, error)
		UpdateHealthFlags(ctx context.Context, req domain.UpdateHealthFlagsRequest, userID string) (domain.HealthFlagsResponse, error)
	}

	userService struct {
		userRepository UserRepository
	}
)

func NewUserService(userRepository UserRepository) UserService {
	return &userService{
		userRepository: userRepository,
	}
}

// GetHealthFlags returns the user's dietary restrictions in the order they
// were saved.
func (s *userService) GetHealthFlags(ctx context.Context, userID string) ([]string, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, domain.ErrParseUUID
	}

	flags, err := s.userRepository.GetHealthFlags(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(flags))
	for _, flag := range flags {
		names = append(names, flag.Name)
	}
	return names, nil
}

// UpdateHealthFlags replaces the whole set. Names are trimmed and
// deduplicated case-insensitively.
func (s *userService) UpdateHealthFlags(ctx context.Context, req domain.UpdateHealthFlagsRequest, userID string) (domain.HealthFlagsResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return domain.HealthFlagsResponse{}, domain.ErrParseUUID
	}

	seen := make(map[string]bool, len(req.Flags))
	names := make([]string, 0, len(req.Flags))
	flags := make([]*entities.HealthFlag, 0, len(req.Flags))
	for _, raw := range req.Flags {
		name := strings.TrimSpace(raw)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
		flags = append(flags, &entities.HealthFlag{UserID: userUUID, Name: name})
	}

	if err := s.userRepository.ReplaceHealthFlags(ctx, userUUID, flags); err != nil {
		return domain.HealthFlagsResponse{}, err
	}

	return domain.HealthFlagsResponse{Flags: names}, nil
}
