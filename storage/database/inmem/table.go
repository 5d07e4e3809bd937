package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// table is a mutex-protected map keeping insertion order.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func newID() string {
	return uuid.New().String()
}

// insertLocked must be called with mu held.
func (t *table[T]) insertLocked(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) insert(id string, row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.insertLocked(id, row)
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// update replaces an existing row; it reports false when `id` is unknown.
func (t *table[T]) update(id string, row T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = row
	return true
}

func (t *table[T]) deleteLocked(ids ...string) int {
	var n int
	for _, id := range ids {
		if _, ok := t.rows[id]; ok {
			delete(t.rows, id)
			n++
		}
	}
	if n > 0 {
		order := t.order[:0]
		for _, id := range t.order {
			if _, ok := t.rows[id]; ok {
				order = append(order, id)
			}
		}
		t.order = order
	}
	return n
}

func (t *table[T]) delete(ids ...string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deleteLocked(ids...)
}

// filterLocked must be called with mu held (read or write).
func (t *table[T]) filterLocked(keep func(T) bool) []T {
	rows := make([]T, 0, len(t.rows))
	for _, id := range t.order {
		if row := t.rows[id]; keep == nil || keep(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

// filter returns the rows matching `keep` (all rows when nil) in insertion order.
func (t *table[T]) filter(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.filterLocked(keep)
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = make(map[string]T)
	t.order = nil
}

// sorted sorts rows in place with `less` and returns them.
func sorted[T any](rows []T, less func(a, b T) bool) []T {
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return rows
}

func anyIn(vals []string, set []string) bool {
	for _, v := range vals {
		for _, s := range set {
			if v == s {
				return true
			}
		}
	}
	return false
}

func in(val string, set []string) bool {
	return anyIn([]string{val}, set)
}

// audienceMatch reports whether one of `roles` starts with one of `audience`.
// A nil roles slice means no restriction; an empty audience means everyone.
func audienceMatch(audience, roles []string) bool {
	if roles == nil || len(audience) == 0 {
		return true
	}
	for _, r := range roles {
		for _, a := range audience {
			if strings.HasPrefix(r, a) {
				return true
			}
		}
	}
	return false
}
