// Package domain defines the persistence models for the food content
// backend: products, media attachments, recipes, stories, contacts, and
// user/device records. These types are mapped with GORM and form the core
// data layer of the application.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductCategory classifies catalog items.
type ProductCategory string

// Supported product categories.
const (
	CategoryFood       ProductCategory = "FOOD"
	CategoryDrink      ProductCategory = "DRINK"
	CategoryDessert    ProductCategory = "DESSERT"
	CategoryIngredient ProductCategory = "INGREDIENT"
	CategoryOther      ProductCategory = "OTHER"
)

// ValidCategory reports whether c is a known product category.
func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryFood, CategoryDrink, CategoryDessert, CategoryIngredient, CategoryOther:
		return true
	}
	return false
}

// MeasurementType is the unit a product is sold/measured in.
type MeasurementType string

// Supported measurement units.
const (
	MeasureKilogram   MeasurementType = "KG"
	MeasureGram       MeasurementType = "G"
	MeasureLitre      MeasurementType = "L"
	MeasureMillilitre MeasurementType = "ML"
	MeasurePiece      MeasurementType = "PIECE"
	MeasurePack       MeasurementType = "PACK"
)

// ValidMeasurement reports whether m is a known measurement unit.
func ValidMeasurement(m MeasurementType) bool {
	switch m {
	case MeasureKilogram, MeasureGram, MeasureLitre, MeasureMillilitre, MeasurePiece, MeasurePack:
		return true
	}
	return false
}

// Product is a priced, discountable, categorized catalog item with three
// locale variants for title and description.
//
// Fields:
//   - ID: numeric primary key.
//   - UUID: stable public identifier (char(36), unique).
//   - TitleUz/TitleRu/TitleEn: per-locale titles; Uz is the canonical value
//     and the fallback for blank variants.
//   - Price: base price; must be positive.
//   - Discount: integer percent in [0, 100].
//   - RealPrice: derived price after discount, recomputed on every save by
//     the BeforeSave hook and never accepted from clients.
//   - IsActive: soft-delete marker; inactive products stay retrievable by id
//     but disappear from the active listing.
type Product struct {
	ID   uint   `json:"id"   gorm:"primaryKey"`
	UUID string `json:"uuid" gorm:"type:char(36);uniqueIndex"`

	TitleUz string `json:"title_uz" gorm:"type:varchar(255);not null"`
	TitleRu string `json:"title_ru" gorm:"type:varchar(255)"`
	TitleEn string `json:"title_en" gorm:"type:varchar(255)"`

	DescriptionUz string `json:"description_uz" gorm:"type:text;not null"`
	DescriptionRu string `json:"description_ru" gorm:"type:text"`
	DescriptionEn string `json:"description_en" gorm:"type:text"`

	Price     float64 `json:"price"      gorm:"type:decimal(12,2);not null"`
	Discount  int     `json:"discount"   gorm:"not null;default:0;check:discount >= 0 AND discount <= 100"`
	RealPrice float64 `json:"real_price" gorm:"type:decimal(12,2)"`

	Category        ProductCategory `json:"category"         gorm:"type:varchar(20);not null;index"`
	MeasurementType MeasurementType `json:"measurement_type" gorm:"type:varchar(10);not null"`

	IsActive  bool      `json:"is_active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// BeforeCreate assigns a public UUID when none was provided.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.NewString()
	}
	return nil
}

// BeforeSave recomputes the discounted price on every write:
//
//	real_price = price - price*discount/100
//
// Client-supplied real_price values are always overwritten here.
func (p *Product) BeforeSave(*gorm.DB) error {
	p.RealPrice = Round2(p.Price - p.Price*float64(p.Discount)/100)
	return nil
}

// DiscountAmount returns price - real_price, or 0 when no discount applies.
func (p *Product) DiscountAmount() float64 {
	if p.Discount <= 0 {
		return 0
	}
	return Round2(p.Price - p.RealPrice)
}

// Round2 rounds a monetary value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MediaOwner identifies the kind of entity a media row is attached to.
// Ownership is an explicit (owner_type, owner_id) pair resolved by lookup,
// with the valid kinds enumerated below.
type MediaOwner string

// Entities that may own media attachments.
const (
	OwnerProduct    MediaOwner = "product"
	OwnerRecipe     MediaOwner = "recipe"
	OwnerRecipeStep MediaOwner = "recipe_step"
	OwnerStory      MediaOwner = "story"
)

// Media is an uploaded file attached to an owning entity. One owner may have
// zero or more media rows, ordered by creation. Replacing an owner's media
// set deletes the previous rows en masse.
type Media struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	OwnerType MediaOwner `json:"-"  gorm:"type:varchar(20);not null;index:idx_media_owner,priority:1"`
	OwnerID   uint       `json:"-"  gorm:"not null;index:idx_media_owner,priority:2"`

	// File is the storage key of the uploaded object; the public URL is
	// derived from it by the storage layer.
	File             string    `json:"file"              gorm:"type:varchar(500);not null"`
	MediaType        string    `json:"media_type"        gorm:"type:varchar(20);not null;default:'image'"`
	OriginalFilename string    `json:"original_filename" gorm:"type:varchar(255)"`
	UploadedBy       string    `json:"-"                 gorm:"type:varchar(64)"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName returns the database table name for Media.
func (Media) TableName() string { return "media" }
