package declaration

import (
	"strings"

	"customsdesk/internal/domain"
)

// ItemKey identifies a goods line across documents. Both parts are trimmed
// and lower-cased; a missing part is the empty string.
type ItemKey struct {
	SKU         string
	Description string
}

// NewItemKey normalizes a model/SKU and description into an ItemKey.
func NewItemKey(sku *string, description string) ItemKey {
	return ItemKey{
		SKU:         normalize(deref(sku)),
		Description: normalize(description),
	}
}

// KeyOf returns the ItemKey of a line item.
func KeyOf(item *domain.LineItem) ItemKey {
	return NewItemKey(item.ModelOrSKU, item.Description)
}

// ItemIndex maps item keys to lines of one document.
type ItemIndex map[ItemKey]*domain.LineItem

// Index builds an ItemIndex over items. On duplicate keys the last item wins.
func Index(items []domain.LineItem) ItemIndex {
	idx := make(ItemIndex, len(items))
	for i := range items {
		idx[KeyOf(&items[i])] = &items[i]
	}
	return idx
}

// Lookup returns the item stored under key.
func (idx ItemIndex) Lookup(key ItemKey) (*domain.LineItem, bool) {
	item, ok := idx[key]
	return item, ok
}

// FindByDescription scans items in order and returns the first one whose
// normalized description equals description. It returns nil when description
// is empty or nothing matches.
func FindByDescription(items []domain.LineItem, description string) *domain.LineItem {
	want := normalize(description)
	if want == "" {
		return nil
	}
	for i := range items {
		if normalize(items[i].Description) == want {
			return &items[i]
		}
	}
	return nil
}

// MatchItem finds the packing-list line for an invoice line: a direct key hit
// in idx, else a linear scan of items by description.
func MatchItem(idx ItemIndex, items []domain.LineItem, item *domain.LineItem) *domain.LineItem {
	key := KeyOf(item)
	if found, ok := idx.Lookup(key); ok {
		return found
	}
	return FindByDescription(items, key.Description)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
