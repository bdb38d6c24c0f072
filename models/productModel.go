package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Unit is the unit a product is sold by.
type Unit string

const (
	UnitPiece    Unit = "pc"
	UnitKilogram Unit = "kg"
	UnitLiter    Unit = "L"
)

const PlaceholderImage = "https://placehold.co/600x400.png"

var (
	ErrInvalidUnit     = errors.New("unit must be one of pc, kg or L")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case UnitPiece, UnitKilogram, UnitLiter:
		return Unit(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidUnit, s)
}

// Step is the increment used by the quantity stepper for this unit.
func (u Unit) Step() float64 {
	if u == UnitPiece {
		return 1
	}
	return 0.05
}

// NormalizeQuantity checks a requested quantity against the unit of sale:
// pieces must be whole numbers, weights and volumes are kept to two decimals.
func (u Unit) NormalizeQuantity(q float64) (float64, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidQuantity, q)
	}
	if u == UnitPiece {
		if q != math.Trunc(q) {
			return 0, fmt.Errorf("%w: %v is not a whole number of pieces", ErrInvalidQuantity, q)
		}
		return q, nil
	}
	return RoundQuantity(q), nil
}

// RoundQuantity rounds to two decimal places so that repeated 0.05 steps
// never accumulate floating point drift.
func RoundQuantity(q float64) float64 {
	f, _ := decimal.NewFromFloat(q).Round(2).Float64()
	return f
}

// LocalizedText holds the English and Hindi variants of a string.
type LocalizedText struct {
	En string `json:"en" bson:"en"`
	Hi string `json:"hi" bson:"hi"`
}

// In returns the text for lang, falling back to English.
func (t LocalizedText) In(lang string) string {
	if lang == "hi" && t.Hi != "" {
		return t.Hi
	}
	return t.En
}

type Product struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36" bson:"_id"`
	Name        LocalizedText `json:"name" gorm:"embedded;embeddedPrefix:name_" bson:"name"`
	Description LocalizedText `json:"description" gorm:"embedded;embeddedPrefix:description_" bson:"description"`
	Price       float64       `json:"price" bson:"price"`
	Category    string        `json:"category" gorm:"index" bson:"category"`
	Unit        Unit          `json:"unit" gorm:"size:4" bson:"unit"`
	Image       string        `json:"image" bson:"image"`
	DataAIHint  string        `json:"dataAiHint,omitempty" bson:"dataAiHint,omitempty"`
	Available   bool          `json:"available" bson:"available"`
	CreatedAt   time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// ProductName is the bilingual name every product must carry.
type ProductName struct {
	En string `json:"en" binding:"required,min=2"`
	Hi string `json:"hi" binding:"required,min=2"`
}

// ProductInput is the admin product form.
type ProductInput struct {
	Name        ProductName   `json:"name"`
	Description LocalizedText `json:"description"`
	Price       float64       `json:"price" binding:"gte=0"`
	Category    string        `json:"category" binding:"required"`
	Unit        string        `json:"unit" binding:"required,oneof=pc kg L"`
	Image       string        `json:"image"`
	DataAIHint  string        `json:"dataAiHint"`
	Available   *bool         `json:"available"`
}

// Validate applies the product form rules and returns the normalized product fields.
func (in ProductInput) Validate() (Product, error) {
	in.Name.En = strings.TrimSpace(in.Name.En)
	in.Name.Hi = strings.TrimSpace(in.Name.Hi)
	in.Category = strings.TrimSpace(in.Category)
	if err := validateStruct(in); err != nil {
		return Product{}, err
	}
	unit, err := ParseUnit(in.Unit)
	if err != nil {
		return Product{}, &ValidationError{Problems: []string{err.Error()}}
	}

	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = PlaceholderImage
	}
	available := true
	if in.Available != nil {
		available = *in.Available
	}
	return Product{
		Name:        LocalizedText(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Unit:        unit,
		Image:       image,
		DataAIHint:  in.DataAIHint,
		Available:   available,
	}, nil
}

// Check reports whether a stored product decodes to a usable value.
func (p Product) Check() error {
	if p.ID == "" {
		return errors.New("product without id")
	}
	if _, err := ParseUnit(string(p.Unit)); err != nil {
		return fmt.Errorf("product %s: %w", p.ID, err)
	}
	return nil
}
