package model

import "sort"

// Collection is the ordered, duplicate-free list of bookmarks a dashboard
// session displays. It is not safe for concurrent use; a single owner
// serializes access.
type Collection struct {
	items   []Bookmark
	version uint64
}

// NewCollection builds a collection from a store snapshot. Records are sorted
// newest first; invalid records and repeated ids are dropped.
func NewCollection(initial []Bookmark) *Collection {
	items := make([]Bookmark, 0, len(initial))
	seen := make(map[string]struct{}, len(initial))
	for _, b := range initial {
		if b.Validate() != nil {
			continue
		}
		if _, ok := seen[b.ID]; ok {
			continue
		}
		seen[b.ID] = struct{}{}
		items = append(items, b)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return &Collection{items: items}
}

// Len returns the number of bookmarks.
func (c *Collection) Len() int { return len(c.items) }

// Version increases on every mutation.
func (c *Collection) Version() uint64 { return c.version }

// Bookmarks returns a copy of the current order.
func (c *Collection) Bookmarks() []Bookmark {
	out := make([]Bookmark, len(c.items))
	copy(out, c.items)
	return out
}

// IndexOf returns the position of id, or -1.
func (c *Collection) IndexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Has reports whether id is present.
func (c *Collection) Has(id string) bool {
	return c.IndexOf(id) >= 0
}

// Get returns the bookmark with the given id.
func (c *Collection) Get(id string) (Bookmark, bool) {
	if i := c.IndexOf(id); i >= 0 {
		return c.items[i], true
	}
	return Bookmark{}, false
}

// At returns the bookmark at index i.
func (c *Collection) At(i int) (Bookmark, bool) {
	if i < 0 || i >= len(c.items) {
		return Bookmark{}, false
	}
	return c.items[i], true
}

// InsertSorted places b before the first record that is not newer than it,
// which keeps created_at descending. A record newer than everything lands
// at the head. It returns false without changes when b is invalid or its id
// is already present.
func (c *Collection) InsertSorted(b Bookmark) bool {
	pos := sort.Search(len(c.items), func(i int) bool {
		return !c.items[i].CreatedAt.After(b.CreatedAt)
	})
	return c.InsertAt(pos, b)
}

// InsertAt inserts b at index i, clamped to the valid range.
func (c *Collection) InsertAt(i int, b Bookmark) bool {
	if b.Validate() != nil || c.Has(b.ID) {
		return false
	}
	if i < 0 {
		i = 0
	}
	if i > len(c.items) {
		i = len(c.items)
	}
	c.items = append(c.items, Bookmark{})
	copy(c.items[i+1:], c.items[i:])
	c.items[i] = b
	c.version++
	return true
}

// Remove deletes id and returns the removed record and its former index.
func (c *Collection) Remove(id string) (Bookmark, int, bool) {
	i := c.IndexOf(id)
	if i < 0 {
		return Bookmark{}, -1, false
	}
	b := c.items[i]
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.version++
	return b, i, true
}

// Neighbors returns the ids directly before and after id. Missing
// neighbours are empty strings.
func (c *Collection) Neighbors(id string) (prev, next string) {
	i := c.IndexOf(id)
	if i < 0 {
		return "", ""
	}
	if i > 0 {
		prev = c.items[i-1].ID
	}
	if i+1 < len(c.items) {
		next = c.items[i+1].ID
	}
	return prev, next
}
