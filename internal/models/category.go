// internal/models/category.go
package models

import (
	"github.com/google/uuid"
)

type Category struct {
	BaseModel
	Name         string       `json:"name" gorm:"size:50;not null"`
	Slug         string       `json:"slug" gorm:"uniqueIndex;size:100;not null"`
	Type         CategoryType `json:"type" gorm:"type:varchar(20);not null;index"`
	Description  string       `json:"description,omitempty" gorm:"size:500"`
	Image        string       `json:"image" gorm:"size:255;default:'default-category.jpg'"`
	ParentID     *uuid.UUID   `json:"parent,omitempty" gorm:"type:uuid"`
	ProductCount int          `json:"productCount" gorm:"not null;default:0"`
	IsFeatured   bool         `json:"isFeatured" gorm:"not null;default:false"`
}
