package storage

import (
	"context"
	"sort"
	"sync"
)

// Record is the stored document for a single inventory item. The item name is
// the key and is not repeated inside the record.
type Record struct {
	Quantity   int  `json:"quantity"`
	IsImported bool `json:"isImported"`
}

// Item pairs a record with its key, as returned by List.
type Item struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	IsImported bool   `json:"isImported"`
}

// Record returns the stored part of the item.
func (i Item) Record() Record {
	return Record{Quantity: i.Quantity, IsImported: i.IsImported}
}

// ItemStore is a key-value collection of inventory records.
// Delete of a missing key is not an error.
type ItemStore interface {
	Get(ctx context.Context, name string) (Record, bool, error)
	List(ctx context.Context) ([]Item, error)
	Put(ctx context.Context, name string, rec Record) error
	Delete(ctx context.Context, name string) error
}

// MemoryStore is an in-process ItemStore, used for tests and the "memory" backend.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Record
}

func NewMemoryStore(items ...Item) *MemoryStore {
	m := &MemoryStore{items: make(map[string]Record, len(items))}
	for _, it := range items {
		m.items[it.Name] = it.Record()
	}
	return m
}

func (m *MemoryStore) Get(ctx context.Context, name string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.items[name]
	return rec, ok, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return itemsFromMap(m.items), nil
}

func (m *MemoryStore) Put(ctx context.Context, name string, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = rec
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

// itemsFromMap flattens a record map into a name-sorted slice.
func itemsFromMap(records map[string]Record) []Item {
	items := make([]Item, 0, len(records))
	for name, rec := range records {
		items = append(items, Item{Name: name, Quantity: rec.Quantity, IsImported: rec.IsImported})
	}
	SortItems(items)
	return items
}

// SortItems orders items by name, the order the document store lists keys in.
func SortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
}
