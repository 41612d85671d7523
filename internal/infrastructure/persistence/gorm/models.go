// Package gorm provides GORM-based persistence for users and recipes
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cookingcapture/api/internal/domain/recipe"
	"github.com/cookingcapture/api/internal/domain/user"
	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID            uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Email         string      `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name          string      `gorm:"type:varchar(255);not null"`
	PasswordHash  string      `gorm:"type:varchar(255);not null"`
	CustomFilters FilterSlice `gorm:"type:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time

	Recipes []RecipeModel `gorm:"foreignKey:OwnerID"`
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID       uuid.UUID `gorm:"type:char(36);primaryKey"`
	OwnerID  uuid.UUID `gorm:"type:char(36);not null;index"`
	UserName string    `gorm:"type:varchar(255)"`

	Title       string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:text"`

	// Timing stored in minutes
	PrepTimeMinutes int `gorm:"column:prep_time_minutes;default:0"`
	CookTimeMinutes int `gorm:"column:cook_time_minutes;default:0"`
	Servings        int `gorm:"default:0"`

	Ingredients IngredientSlice `gorm:"type:json"`
	Steps       StepSlice       `gorm:"type:json"`
	Tags        StringSlice     `gorm:"type:json"`

	SourceType string `gorm:"type:varchar(20);not null;index"`
	SourceURL  string `gorm:"type:text"`

	ImageURL   string     `gorm:"type:text"`
	IsPublic   bool       `gorm:"default:false;index"`
	CopiedFrom *uuid.UUID `gorm:"type:char(36);index"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Owner UserModel `gorm:"foreignKey:OwnerID"`
}

// StringSlice custom type for handling string slices in JSON columns
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// IngredientSlice stores recipe ingredients as a JSON column
type IngredientSlice []recipe.Ingredient

// Scan implements the sql.Scanner interface
func (s *IngredientSlice) Scan(value interface{}) error {
	if value == nil {
		*s = IngredientSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into IngredientSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s IngredientSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// StepSlice stores recipe steps as a JSON column
type StepSlice []recipe.Step

// Scan implements the sql.Scanner interface
func (s *StepSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StepSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StepSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StepSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// FilterSlice stores a user's custom filters as a JSON column
type FilterSlice []user.Filter

// Scan implements the sql.Scanner interface
func (s *FilterSlice) Scan(value interface{}) error {
	if value == nil {
		*s = FilterSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into FilterSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s FilterSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	return json.Marshal(s)
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gormlib.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gormlib.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (UserModel) TableName() string {
	return "users"
}

func (RecipeModel) TableName() string {
	return "recipes"
}
