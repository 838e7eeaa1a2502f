package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a line entry on a list. The JSON field names are part of the live
// event payload contract and must not change: connected web clients match on
// them exactly.
type Item struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ListID          uuid.UUID  `json:"shoppingListId" db:"list_id"`
	Name            string     `json:"name" db:"name"`
	Quantity        string     `json:"quantity" db:"quantity"`
	IsChecked       bool       `json:"isChecked" db:"is_checked"`
	AddedAt         time.Time  `json:"addedAt" db:"added_at"`
	CategoryID      *uuid.UUID `json:"categoryId" db:"category_id"`
	CategoryName    *string    `json:"categoryName" db:"category_name"`
	SubCategoryID   *uuid.UUID `json:"subCategoryId" db:"sub_category_id"`
	SubCategoryName *string    `json:"subCategoryName" db:"sub_category_name"`
}

// Equal reports whether two items carry the same payload. Used by the
// reconciliation path to suppress no-op updates.
func (i *Item) Equal(o *Item) bool {
	if i == nil || o == nil {
		return i == o
	}
	return i.ID == o.ID &&
		i.ListID == o.ListID &&
		i.Name == o.Name &&
		i.Quantity == o.Quantity &&
		i.IsChecked == o.IsChecked &&
		i.AddedAt.Equal(o.AddedAt) &&
		uuidPtrEqual(i.CategoryID, o.CategoryID) &&
		strPtrEqual(i.CategoryName, o.CategoryName) &&
		uuidPtrEqual(i.SubCategoryID, o.SubCategoryID) &&
		strPtrEqual(i.SubCategoryName, o.SubCategoryName)
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
