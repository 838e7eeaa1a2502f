package live

import (
	"sync"
	"time"
)

// Item is the wire shape of a shopping list item as pushed by the server.
type Item struct {
	ID              string    `json:"id"`
	ListID          string    `json:"shoppingListId"`
	Name            string    `json:"name"`
	Quantity        string    `json:"quantity"`
	IsChecked       bool      `json:"isChecked"`
	AddedAt         time.Time `json:"addedAt"`
	CategoryID      *string   `json:"categoryId"`
	CategoryName    *string   `json:"categoryName"`
	SubCategoryID   *string   `json:"subCategoryId"`
	SubCategoryName *string   `json:"subCategoryName"`
}

// Equal reports whether two items carry the same state.
func (i Item) Equal(other Item) bool {
	return i.ID == other.ID &&
		i.ListID == other.ListID &&
		i.Name == other.Name &&
		i.Quantity == other.Quantity &&
		i.IsChecked == other.IsChecked &&
		i.AddedAt.Equal(other.AddedAt) &&
		strPtrEqual(i.CategoryID, other.CategoryID) &&
		strPtrEqual(i.CategoryName, other.CategoryName) &&
		strPtrEqual(i.SubCategoryID, other.SubCategoryID) &&
		strPtrEqual(i.SubCategoryName, other.SubCategoryName)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ListView is the local copy of one list's items, converged from an initial
// fetch plus pushed events. Every Apply method is idempotent, so redelivered
// or self-echoed events settle without visible churn: an add for a known id
// and an update carrying no changes are both no-ops.
type ListView struct {
	listID string

	mu    sync.RWMutex
	order []string
	items map[string]Item
}

// NewListView creates an empty view for the given list.
func NewListView(listID string) *ListView {
	return &ListView{
		listID: listID,
		items:  make(map[string]Item),
	}
}

// ListID returns the id of the list this view tracks.
func (v *ListView) ListID() string {
	return v.listID
}

// Replace resets the view to the given items, in order. Used after the
// initial fetch and after a reconnect refetch.
func (v *ListView) Replace(items []Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.order = v.order[:0]
	v.items = make(map[string]Item, len(items))
	for _, item := range items {
		if _, ok := v.items[item.ID]; ok {
			continue
		}
		v.order = append(v.order, item.ID)
		v.items[item.ID] = item
	}
}

// ApplyAdded folds in an item-added event. An item already present is left
// untouched, so the originator's own echo is invisible.
func (v *ListView) ApplyAdded(item Item) {
	if item.ListID != "" && item.ListID != v.listID {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.items[item.ID]; ok {
		return
	}
	v.order = append(v.order, item.ID)
	v.items[item.ID] = item
}

// ApplyUpdated folds in an item-updated event. Unknown ids are ignored
// rather than inserted; an update equal to the current state is a no-op.
func (v *ListView) ApplyUpdated(item Item) {
	v.mu.Lock()
	defer v.mu.Unlock()
	current, ok := v.items[item.ID]
	if !ok {
		return
	}
	if current.Equal(item) {
		return
	}
	v.items[item.ID] = item
}

// ApplyDeleted folds in an item-deleted event. Deleting an unknown id is a
// no-op, so delete-before-add and redelivered deletes both settle cleanly.
func (v *ListView) ApplyDeleted(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.items[id]; !ok {
		return
	}
	delete(v.items, id)
	for i, existing := range v.order {
		if existing == id {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Get returns the item with the given id, if present.
func (v *ListView) Get(id string) (Item, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	item, ok := v.items[id]
	return item, ok
}

// Items returns a snapshot of the view in insertion order.
func (v *ListView) Items() []Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Item, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.items[id])
	}
	return out
}

// Len returns the number of items in the view.
func (v *ListView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}
