package models

import "time"

// StudyDocument holds the extracted text of one uploaded file.
// Content is immutable once set; only Selected (and Name) change afterwards.
type StudyDocument struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	OwnerID  string `gorm:"column:owner_id;type:uuid;index" json:"owner_id"`
	Name     string `gorm:"column:name;type:text" json:"name"`
	FileType string `gorm:"column:file_type;type:text" json:"file_type"`
	Content  string `gorm:"column:content;type:text" json:"content"`
	Selected bool   `gorm:"column:selected" json:"selected"`

	// Set when a teacher pushed this document to a roster; locked documents
	// cannot be renamed or deleted by the student.
	Locked     bool   `gorm:"column:locked" json:"locked"`
	AssignedBy string `gorm:"column:assigned_by;type:text" json:"assigned_by,omitempty"`

	// Raw upload archived in object storage.
	ObjectPath string `gorm:"column:object_path;type:text" json:"object_path,omitempty"`
	FileSize   int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType   string `gorm:"column:mime_type;type:text" json:"mime_type"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (StudyDocument) TableName() string { return "study_documents" }
