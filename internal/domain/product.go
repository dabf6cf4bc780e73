package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category string

const (
	CategoryCleanser    Category = "Cleanser"
	CategorySerum       Category = "Serum"
	CategoryMoisturizer Category = "Moisturizer"
	CategorySunscreen   Category = "Sunscreen"
	CategoryMask        Category = "Mask"
	CategoryTreatment   Category = "Treatment"
	CategoryToner       Category = "Toner"
	CategoryBabyCare    Category = "Baby Care"
	CategoryHairCare    Category = "Hair Care"
)

// CategoryAll is the catalog filter value meaning "no category filter".
const CategoryAll = "All"

var categories = []Category{
	CategoryCleanser,
	CategorySerum,
	CategoryMoisturizer,
	CategorySunscreen,
	CategoryMask,
	CategoryTreatment,
	CategoryToner,
	CategoryBabyCare,
	CategoryHairCare,
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

type ProductVariant struct {
	Size    string  `bson:"size" json:"size"`
	Price   float64 `bson:"price" json:"price"`
	MRP     float64 `bson:"mrp,omitempty" json:"mrp,omitempty"`
	InStock bool    `bson:"inStock" json:"inStock"`
}

// Product is owned by the catalog. Field names follow the documents the
// catalog already stores, hence the camelCase bson keys.
type Product struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                string             `bson:"name" json:"name"`
	Description         string             `bson:"description" json:"description"`
	DetailedDescription string             `bson:"detailedDescription" json:"detailedDescription"`
	Price               float64            `bson:"price" json:"price"`
	MRP                 float64            `bson:"mrp,omitempty" json:"mrp,omitempty"`
	DiscountPercentage  float64            `bson:"discountPercentage" json:"discountPercentage"`
	Category            Category           `bson:"category" json:"category"`
	ImageURL            string             `bson:"imageUrl" json:"imageUrl"`
	AdditionalImages    []string           `bson:"additionalImages" json:"additionalImages"`
	Rating              float64            `bson:"rating" json:"rating"`
	ReviewCount         int                `bson:"reviewCount" json:"reviewCount"`
	KeyBenefits         []string           `bson:"keyBenefits" json:"keyBenefits"`
	FreeFrom            []string           `bson:"freeFrom" json:"freeFrom"`
	Certifications      []string           `bson:"certifications" json:"certifications"`
	Ingredients         []string           `bson:"ingredients" json:"ingredients"`
	Size                string             `bson:"size" json:"size"`
	Variants            []ProductVariant   `bson:"variants" json:"variants"`
	SpecialFeatures     []string           `bson:"specialFeatures" json:"specialFeatures"`
	InStock             bool               `bson:"inStock" json:"inStock"`
	BestSeller          bool               `bson:"bestSeller" json:"bestSeller"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p *Product) ProductID() ProductID {
	return ProductIDFromObjectID(p.ID)
}

// ProductQuery is the catalog listing filter.
type ProductQuery struct {
	Category           string
	BestSellerOnly     bool
	ExcludedCategories []string
}
