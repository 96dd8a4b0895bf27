package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role models.UserRole) error
	SetModeAccess(ctx context.Context, id string, mode models.ModeAccess) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Insert(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("lower(email) = ?", strings.ToLower(email)).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) List(ctx context.Context, search string) ([]models.User, error) {
	q := r.db.WithContext(ctx).Order("created_at ASC")
	if s := strings.TrimSpace(search); s != "" {
		q = q.Where("email ILIKE ?", "%"+s+"%")
	}

	var rows []models.User
	err := q.Find(&rows).Error
	return rows, err
}

func (r *userRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, id, map[string]any{"is_active": active})
}

func (r *userRepo) SetRole(ctx context.Context, id string, role models.UserRole) error {
	return r.update(ctx, id, map[string]any{"role": role})
}

func (r *userRepo) SetModeAccess(ctx context.Context, id string, mode models.ModeAccess) error {
	return r.update(ctx, id, map[string]any{"mode_access": mode})
}

func (r *userRepo) update(ctx context.Context, id string, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}
