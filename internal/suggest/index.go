// Package suggest maintains in-memory name indexes for the console's
// reference dropdowns (billboard pickers, category/size/color selects).
// Lookups are ordered prefix scans over a btree, so typeahead stays
// fast regardless of catalog size.
package suggest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/btree"
	"gorm.io/gorm"

	"github.com/merchkit/storeadmin/internal/domain"
	"github.com/merchkit/storeadmin/internal/events"
)

// Entry is one suggestion returned to the console.
type Entry struct {
	ID    int64  `json:"id,string"`
	Label string `json:"label"`
}

type item struct {
	key   string // lowercased label + "\x00" + id, unique and sort-stable
	id    int64
	label string
}

func itemLess(a, b item) bool { return a.key < b.key }

func itemKey(label string, id int64) string {
	return strings.ToLower(label) + "\x00" + fmt.Sprintf("%d", id)
}

type bucket struct {
	tree *btree.BTreeG[item]
	byID map[int64]string // id -> current key, for replace/delete
}

func newBucket() *bucket {
	return &bucket{
		tree: btree.NewG[item](8, itemLess),
		byID: make(map[int64]string),
	}
}

// Index holds one btree per (store, resource) pair.
type Index struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

func NewIndex() *Index {
	return &Index{buckets: make(map[string]*bucket)}
}

func bucketKey(storeID int64, resource string) string {
	return fmt.Sprintf("%d/%s", storeID, resource)
}

func (ix *Index) bucketFor(storeID int64, resource string, create bool) *bucket {
	key := bucketKey(storeID, resource)
	if b, okb := ix.buckets[key]; okb {
		return b
	}
	if !create {
		return nil
	}
	b := newBucket()
	ix.buckets[key] = b
	return b
}

// Put inserts or replaces the entry for id.
func (ix *Index) Put(storeID int64, resource string, id int64, label string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	b := ix.bucketFor(storeID, resource, true)
	if old, okid := b.byID[id]; okid {
		b.tree.Delete(item{key: old})
	}
	key := itemKey(label, id)
	b.tree.ReplaceOrInsert(item{key: key, id: id, label: label})
	b.byID[id] = key
}

// Remove drops the entry for id, if present.
func (ix *Index) Remove(storeID int64, resource string, id int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	b := ix.bucketFor(storeID, resource, false)
	if b == nil {
		return
	}
	if old, okid := b.byID[id]; okid {
		b.tree.Delete(item{key: old})
		delete(b.byID, id)
	}
}

// Query returns up to limit entries whose label starts with prefix,
// in label order. An empty prefix lists from the beginning.
func (ix *Index) Query(storeID int64, resource, prefix string, limit int) []Entry {
	if limit <= 0 {
		limit = 10
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	b := ix.bucketFor(storeID, resource, false)
	if b == nil {
		return nil
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	out := make([]Entry, 0, limit)
	b.tree.AscendGreaterOrEqual(item{key: prefix}, func(it item) bool {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(it.label), prefix) {
			return false
		}
		out = append(out, Entry{ID: it.id, Label: it.label})
		return len(out) < limit
	})
	return out
}

// Subscribe keeps the index in sync with entity mutations.
func (ix *Index) Subscribe(bus *events.Bus) error {
	return bus.SubscribeMutation(func(m events.EntityMutation) {
		switch m.Action {
		case events.ActionDeleted:
			ix.Remove(m.StoreID, m.Resource, m.EntityID)
		default:
			if m.Name != "" {
				ix.Put(m.StoreID, m.Resource, m.EntityID, m.Name)
			}
		}
	})
}

// Warm loads every store's entity names from the database. Called once
// at startup; afterwards the event subscription keeps the index fresh.
func (ix *Index) Warm(db *gorm.DB) error {
	var billboards []domain.Billboard
	if err := db.Select("id", "store_id", "label").Find(&billboards).Error; err != nil {
		return err
	}
	for _, b := range billboards {
		ix.Put(b.StoreID, "billboards", b.ID, b.Label)
	}

	var categories []domain.Category
	if err := db.Select("id", "store_id", "name").Find(&categories).Error; err != nil {
		return err
	}
	for _, c := range categories {
		ix.Put(c.StoreID, "categories", c.ID, c.Name)
	}

	var sizes []domain.Size
	if err := db.Select("id", "store_id", "name").Find(&sizes).Error; err != nil {
		return err
	}
	for _, s := range sizes {
		ix.Put(s.StoreID, "sizes", s.ID, s.Name)
	}

	var colors []domain.Color
	if err := db.Select("id", "store_id", "name").Find(&colors).Error; err != nil {
		return err
	}
	for _, c := range colors {
		ix.Put(c.StoreID, "colors", c.ID, c.Name)
	}

	var products []domain.Product
	if err := db.Select("id", "store_id", "name").Find(&products).Error; err != nil {
		return err
	}
	for _, p := range products {
		ix.Put(p.StoreID, "products", p.ID, p.Name)
	}
	return nil
}
