package models

import (
	"time"

	"github.com/lib/pq"
)

type Classroom struct {
	ID         string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name       string         `gorm:"column:name;type:text" json:"name"`
	TeacherID  string         `gorm:"column:teacher_id;type:uuid;index" json:"teacher_id"`
	StudentIDs pq.StringArray `gorm:"column:student_ids;type:uuid[]" json:"student_ids"`
	CreatedAt  time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Classroom) TableName() string { return "classrooms" }
