package domain

import "time"

// Category groups knowledge entries by what they describe
type Category string

const (
	CategoryProducts     Category = "products"
	CategoryPolicies     Category = "policies"
	CategoryCommonIssues Category = "common_issues"
)

// IsValid checks if the category is one of the known values
func (c Category) IsValid() bool {
	switch c {
	case CategoryProducts, CategoryPolicies, CategoryCommonIssues:
		return true
	}
	return false
}

// Categories lists all knowledge categories in scan order
func Categories() []Category {
	return []Category{CategoryProducts, CategoryPolicies, CategoryCommonIssues}
}

// Entry is one reference snippet used to ground generated responses.
// Entries are read-only during pipeline execution; operators maintain them
// through the knowledge API.
type Entry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Category  Category  `json:"category" gorm:"index:idx_category_key,unique;not null"`
	Key       string    `json:"key" gorm:"index:idx_category_key,unique;not null"`
	Value     string    `json:"value" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Entry) TableName() string {
	return "knowledge_entries"
}
