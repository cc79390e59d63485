package crud

import (
	"errors"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when an entity (or a bulk-delete id, or a
	// parent reference) does not resolve to a record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a create/update would collide with an
	// existing record on one of the entity's unique columns.
	ErrDuplicate = errors.New("record already exists")

	// ErrParentNotFound is returned when a supplied parent reference does
	// not name an existing record of the enclosing kind.
	ErrParentNotFound = errors.New("parent record not found")

	// ErrInvalidSort is returned for malformed or non-whitelisted sortBy
	// expressions.
	ErrInvalidSort = errors.New("invalid sort expression")
)

// Unique is implemented by entities whose create/update must reject
// duplicates. The returned map holds column name to current value for
// every column participating in the check; a record collides when any
// one of them matches (OR semantics). Empty values are skipped.
type Unique interface {
	UniqueBy() map[string]string
}

// Parented is implemented by entities carrying a reference to their
// immediate ancestor in the hierarchy.
type Parented interface {
	ParentID() *uint
}

// JoinIDs renders a sorted id list for error messages.
func JoinIDs(ids []uint) string {
	sorted := make([]uint, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ", ")
}
