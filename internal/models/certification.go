package models

import (
	"time"

	"github.com/google/uuid"
)

// Certification is the durable proof-of-passing record. At most one row
// exists per (user, quiz); the certificate code is a random token unique
// across the platform.
type Certification struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	CourseID        uuid.UUID `json:"course_id"`
	QuizID          uuid.UUID `json:"quiz_id"`
	CertificateCode string    `json:"certificate_code"`
	CreatedAt       time.Time `json:"created_at"`
}

// CertificationDetail is a certification joined with the display names a
// certificate view needs.
type CertificationDetail struct {
	Certification
	UserName    string `json:"user_name"`
	CourseTitle string `json:"course_title"`
	QuizTitle   string `json:"quiz_title"`
}

// CertificateNotification records that a certificate-issued event was
// processed by the worker.
type CertificateNotification struct {
	ID              uuid.UUID `json:"id"`
	CertificationID uuid.UUID `json:"certification_id"`
	UserID          uuid.UUID `json:"user_id"`
	QuizID          uuid.UUID `json:"quiz_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}
