package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/eureka-edu/studybuddy/internal/models"
	"github.com/eureka-edu/studybuddy/internal/utils"
)

type DocumentRepository interface {
	Insert(ctx context.Context, d *models.StudyDocument) error
	GetByID(ctx context.Context, id string) (*models.StudyDocument, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.StudyDocument, error)
	ListSelected(ctx context.Context, ownerID string) ([]models.StudyDocument, error)
	SetSelected(ctx context.Context, id string, selected bool) error
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type documentRepo struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Insert(ctx context.Context, d *models.StudyDocument) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *documentRepo) GetByID(ctx context.Context, id string) (*models.StudyDocument, error) {
	var d models.StudyDocument
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &d, err
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.StudyDocument, error) {
	var rows []models.StudyDocument
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *documentRepo) ListSelected(ctx context.Context, ownerID string) ([]models.StudyDocument, error) {
	var rows []models.StudyDocument
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND selected = true", ownerID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *documentRepo) SetSelected(ctx context.Context, id string, selected bool) error {
	res := r.db.WithContext(ctx).Model(&models.StudyDocument{}).
		Where("id = ?", id).
		Update("selected", selected)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *documentRepo) Rename(ctx context.Context, id, name string) error {
	res := r.db.WithContext(ctx).Model(&models.StudyDocument{}).
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

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.StudyDocument{}).Error
}
