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

type ClassroomService interface {
	Create(ctx context.Context, teacherID, name string) (*models.Classroom, error)
	Get(ctx context.Context, teacherID, id string) (*models.Classroom, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error)
	UpdateRoster(ctx context.Context, teacherID, id string, studentIDs []string) error
	Rename(ctx context.Context, teacherID, id, name string) error
	Delete(ctx context.Context, teacherID, id string) error

	// AssignDocument copies one of the teacher's documents into every roster
	// student's library as a locked, pre-selected document.
	AssignDocument(ctx context.Context, teacherID, classroomID, documentID string) (int, error)
}

type classroomService struct {
	classrooms pgrepo.ClassroomRepository
	users      pgrepo.UserRepository
	docs       DocumentService
}

func NewClassroomService(classrooms pgrepo.ClassroomRepository, users pgrepo.UserRepository, docs DocumentService) ClassroomService {
	return &classroomService{classrooms: classrooms, users: users, docs: docs}
}

func (s *classroomService) Create(ctx context.Context, teacherID, name string) (*models.Classroom, error) {
	const op = "ClassroomService.Create"

	name = strings.TrimSpace(name)
	if teacherID == "" || name == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "teacher_id and name are required", nil)
	}

	c := &models.Classroom{
		ID:         uuid.NewString(),
		Name:       name,
		TeacherID:  teacherID,
		StudentIDs: nil,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.classrooms.Insert(ctx, c); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert classroom", err)
	}
	return c, nil
}

func (s *classroomService) Get(ctx context.Context, teacherID, id string) (*models.Classroom, error) {
	const op = "ClassroomService.Get"

	c, err := s.owned(ctx, op, teacherID, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *classroomService) ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	const op = "ClassroomService.ListByTeacher"

	if teacherID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "teacher_id is required", nil)
	}
	rows, err := s.classrooms.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list classrooms", err)
	}
	return rows, nil
}

func (s *classroomService) UpdateRoster(ctx context.Context, teacherID, id string, studentIDs []string) error {
	const op = "ClassroomService.UpdateRoster"

	if _, err := s.owned(ctx, op, teacherID, id); err != nil {
		return err
	}

	// Dedupe while keeping order, and verify every id is an actual student.
	seen := map[string]struct{}{}
	roster := make([]string, 0, len(studentIDs))
	for _, sid := range studentIDs {
		sid = strings.TrimSpace(sid)
		if sid == "" {
			continue
		}
		if _, dup := seen[sid]; dup {
			continue
		}
		seen[sid] = struct{}{}

		u, err := s.users.GetByID(ctx, sid)
		if err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return utils.E(utils.CodeInvalidArgument, op, "unknown student id: "+sid, nil)
			}
			return utils.E(utils.CodeInternal, op, "failed to verify student", err)
		}
		if u.Role != models.RoleStudent {
			return utils.E(utils.CodeInvalidArgument, op, "roster may only contain students", nil)
		}
		roster = append(roster, sid)
	}

	if err := s.classrooms.UpdateRoster(ctx, id, roster); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update roster", err)
	}
	return nil
}

func (s *classroomService) Rename(ctx context.Context, teacherID, id, name string) error {
	const op = "ClassroomService.Rename"

	name = strings.TrimSpace(name)
	if name == "" {
		return utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}
	if _, err := s.owned(ctx, op, teacherID, id); err != nil {
		return err
	}
	if err := s.classrooms.Rename(ctx, id, name); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to rename classroom", err)
	}
	return nil
}

func (s *classroomService) Delete(ctx context.Context, teacherID, id string) error {
	const op = "ClassroomService.Delete"

	if _, err := s.owned(ctx, op, teacherID, id); err != nil {
		return err
	}
	if err := s.classrooms.Delete(ctx, id); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete classroom", err)
	}
	return nil
}

func (s *classroomService) AssignDocument(ctx context.Context, teacherID, classroomID, documentID string) (int, error) {
	const op = "ClassroomService.AssignDocument"

	c, err := s.owned(ctx, op, teacherID, classroomID)
	if err != nil {
		return 0, err
	}

	assigned, err := s.docs.AssignCopy(ctx, teacherID, documentID, c.StudentIDs)
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

func (s *classroomService) owned(ctx context.Context, op, teacherID, id string) (*models.Classroom, error) {
	if teacherID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "teacher_id and classroom id are required", nil)
	}

	c, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "classroom not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get classroom", err)
	}
	if c.TeacherID != teacherID {
		return nil, utils.E(utils.CodeForbidden, op, "classroom belongs to another teacher", nil)
	}
	return c, nil
}
