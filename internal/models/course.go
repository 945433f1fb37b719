package models

import "time"

// Course is the catalog row this service reads prices from. Price is in tokens; 0 means free.
type Course struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Level           string    `gorm:"size:32" json:"level"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           int64     `gorm:"not null;default:0;check:chk_courses_price,price >= 0" json:"price"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}
