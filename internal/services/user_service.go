package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eureka-edu/studybuddy/internal/models"
	pgrepo "github.com/eureka-edu/studybuddy/internal/repositories/postgres"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type UserService interface {
	Register(ctx context.Context, firstName, lastName, email, password string, role models.UserRole) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role models.UserRole) error
	SetModeAccess(ctx context.Context, id string, mode models.ModeAccess) error
}

type userService struct {
	users pgrepo.UserRepository
}

func NewUserService(users pgrepo.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Register(ctx context.Context, firstName, lastName, email, password string, role models.UserRole) (*models.User, error) {
	const op = "UserService.Register"

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}
	if len(password) < utils.MinPasswordLen {
		return nil, utils.E(utils.CodeInvalidArgument, op, "password must be at least 8 characters", nil)
	}

	switch role {
	case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
	case "":
		role = models.RoleStudent
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown role", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "email already registered", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}

	u := &models.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		ModeAccess:   models.ModeClassic,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.Insert(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert user", err)
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	const op = "UserService.Login"

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return nil, "", utils.E(utils.CodeInternal, op, "failed to look up user", err)
	}

	if err := utils.CheckPassword(u.PasswordHash, password); err != nil {
		return nil, "", utils.E(utils.CodeUnauthorized, op, "invalid credentials", nil)
	}
	if !u.IsActive {
		return nil, "", utils.E(utils.CodeForbidden, op, "account is deactivated", nil)
	}

	tok, err := utils.SignToken(u.ID, string(u.Role), string(u.ModeAccess))
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "UserService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context, search string) ([]models.User, error) {
	const op = "UserService.List"

	rows, err := s.users.List(ctx, search)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list users", err)
	}
	return rows, nil
}

func (s *userService) SetActive(ctx context.Context, id string, active bool) error {
	const op = "UserService.SetActive"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	if err := s.users.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update user", err)
	}
	return nil
}

func (s *userService) SetRole(ctx context.Context, id string, role models.UserRole) error {
	const op = "UserService.SetRole"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	switch role {
	case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
	default:
		return utils.E(utils.CodeInvalidArgument, op, "unknown role", nil)
	}

	if err := s.users.SetRole(ctx, id, role); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update role", err)
	}
	return nil
}

func (s *userService) SetModeAccess(ctx context.Context, id string, mode models.ModeAccess) error {
	const op = "UserService.SetModeAccess"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "id is required", nil)
	}
	switch mode {
	case models.ModeNative, models.ModeClassic:
	default:
		return utils.E(utils.CodeInvalidArgument, op, "unknown mode", nil)
	}

	if err := s.users.SetModeAccess(ctx, id, mode); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to update mode access", err)
	}
	return nil
}
