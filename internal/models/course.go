package models

import (
	"time"

	"github.com/google/uuid"
)

// Course represents a training course. Course CRUD is owned by the admin
// persistence service; rows exist here for referential integrity and for
// certificate joins.
type Course struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Material represents an uploaded training material within a course. The
// file itself lives in the external blob store; only the path is recorded.
type Material struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	Title     string    `json:"title"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}
