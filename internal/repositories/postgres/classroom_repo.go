package postgres

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type ClassroomRepository interface {
	Insert(ctx context.Context, c *models.Classroom) error
	GetByID(ctx context.Context, id string) (*models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error)
	UpdateRoster(ctx context.Context, id string, studentIDs []string) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type classroomRepo struct {
	db *gorm.DB
}

func NewClassroomRepo(db *gorm.DB) ClassroomRepository {
	return &classroomRepo{db: db}
}

func (r *classroomRepo) Insert(ctx context.Context, c *models.Classroom) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *classroomRepo) GetByID(ctx context.Context, id string) (*models.Classroom, error) {
	var c models.Classroom
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &c, err
}

func (r *classroomRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	var rows []models.Classroom
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *classroomRepo) UpdateRoster(ctx context.Context, id string, studentIDs []string) error {
	res := r.db.WithContext(ctx).Model(&models.Classroom{}).
		Where("id = ?", id).
		Update("student_ids", pq.StringArray(studentIDs))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *classroomRepo) Rename(ctx context.Context, id, name string) error {
	res := r.db.WithContext(ctx).Model(&models.Classroom{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *classroomRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Classroom{}).Error
}
