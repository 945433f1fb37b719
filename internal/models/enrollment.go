package models

import "time"

// Enrollment grants a user access to a course. There is no unenroll.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"size:64;not null;index:idx_enrollment_pair,unique,priority:1" json:"user_id"`
	CourseID   uint      `gorm:"not null;index:idx_enrollment_pair,unique,priority:2" json:"course_id"`
	Progress   int       `gorm:"not null;default:0" json:"progress"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
