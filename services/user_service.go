package services

import (
	"context"

	"github.com/bugtracker-api/dto"
	"github.com/bugtracker-api/models"
	"github.com/bugtracker-api/repositories"
)

// UserService exposes read access to accounts
type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id string) (models.User, error) {
	return s.users.FindByID(ctx, id)
}

// ListUsers pages through every account
func (s *UserService) ListUsers(ctx context.Context, page dto.Pagination) (dto.UserListResponse, error) {
	page.Normalize()
	users, total, err := s.users.FindWithPagination(ctx, page)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	resp := dto.UserListResponse{
		Users:      make([]dto.UserResponse, 0, len(users)),
		TotalCount: total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages(total),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, dto.NewUserResponse(u))
	}
	return resp, nil
}
