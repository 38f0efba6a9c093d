package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeDifficulty grades how hard a recipe is to cook.
type RecipeDifficulty string

// Supported difficulty levels.
const (
	DifficultyEasy   RecipeDifficulty = "EASY"
	DifficultyMedium RecipeDifficulty = "MEDIUM"
	DifficultyHard   RecipeDifficulty = "HARD"
)

// ValidDifficulty reports whether d is a known difficulty level.
func ValidDifficulty(d RecipeDifficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Recipe is a named dish composed of ordered ingredient references and
// ordered cooking steps. ViewCount is monotonically non-decreasing; it is
// bumped with an atomic column increment on every detail fetch.
type Recipe struct {
	ID   uint   `json:"id"   gorm:"primaryKey"`
	UUID string `json:"uuid" gorm:"type:char(36);uniqueIndex"`

	NameUz string `json:"name_uz" gorm:"type:varchar(255);not null"`
	NameRu string `json:"name_ru" gorm:"type:varchar(255)"`
	NameEn string `json:"name_en" gorm:"type:varchar(255)"`

	DescriptionUz string `json:"description_uz" gorm:"type:text"`
	DescriptionRu string `json:"description_ru" gorm:"type:text"`
	DescriptionEn string `json:"description_en" gorm:"type:text"`

	Rating      float64          `json:"rating"       gorm:"not null;default:0"`
	Calories    int              `json:"calories"     gorm:"not null;default:0"`
	TimeMinutes int              `json:"time_minutes" gorm:"not null;default:0"`
	Difficulty  RecipeDifficulty `json:"difficulty"   gorm:"type:varchar(10);not null;default:'EASY'"`
	Servings    int              `json:"servings"     gorm:"not null;default:1"`

	IsActive  bool `json:"is_active"  gorm:"not null;default:true;index"`
	ViewCount int  `json:"view_count" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Ingredients and Steps are replaced wholesale on create/update,
	// inside a single transaction.
	Ingredients []RecipeProduct `json:"ingredients,omitempty" gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Steps       []RecipeStep    `json:"steps,omitempty"       gorm:"foreignKey:RecipeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// BeforeCreate assigns a public UUID when none was provided.
func (r *Recipe) BeforeCreate(*gorm.DB) error {
	if r.UUID == "" {
		r.UUID = uuid.NewString()
	}
	return nil
}

// TotalDuration is the recipe's own time plus the sum of all step durations.
func (r *Recipe) TotalDuration() int {
	total := r.TimeMinutes
	for _, s := range r.Steps {
		total += s.DurationMinutes
	}
	return total
}

// RecipeProduct links a recipe to one of its ingredient products, with a
// free-text quantity. Order is sortable but not enforced unique.
type RecipeProduct struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	RecipeID  uint   `json:"-"          gorm:"not null;index"`
	ProductID uint   `json:"product_id" gorm:"not null;index"`
	Quantity  string `json:"quantity"   gorm:"type:varchar(50);not null"`
	IsOptional bool  `json:"is_optional" gorm:"not null;default:false"`
	Order     int    `json:"order"      gorm:"column:sort_order;not null;default:0"`

	Product Product `json:"-" gorm:"foreignKey:ProductID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RecipeProduct.
func (RecipeProduct) TableName() string { return "recipe_products" }

// RecipeStep is one ordered cooking instruction. StepNumber is unique within
// its recipe, enforced by a composite unique index.
type RecipeStep struct {
	ID              uint   `json:"id"          gorm:"primaryKey"`
	RecipeID        uint   `json:"-"           gorm:"not null;uniqueIndex:ux_recipe_step_number,priority:1"`
	StepNumber      int    `json:"step_number" gorm:"not null;uniqueIndex:ux_recipe_step_number,priority:2"`
	Title           string `json:"title"       gorm:"type:varchar(255)"`
	Description     string `json:"description" gorm:"type:text;not null"`
	DurationMinutes int    `json:"duration_minutes" gorm:"not null;default:0"`
	Tips            string `json:"tips"        gorm:"type:text"`
}

// TableName returns the database table name for RecipeStep.
func (RecipeStep) TableName() string { return "recipe_steps" }
