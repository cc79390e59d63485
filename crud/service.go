package crud

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// Config describes one entity kind to the generic service.
type Config struct {
	Name        string   // singular name used in error messages, e.g. "country"
	ParentAssoc string   // association preloaded on list results, e.g. "Country"
	ParentTable string   // table checked when validating parent references
	Sortable    []string // columns accepted in sortBy expressions
}

// Service implements the shared CRUD contract for one entity kind. The
// six entity services of this API are instances of this one type; only
// the Config differs between them.
type Service[T any] struct {
	db       *gorm.DB
	cfg      Config
	sortable map[string]bool
}

// NewService creates a CRUD service for the entity type T.
func NewService[T any](db *gorm.DB, cfg Config) *Service[T] {
	sortable := make(map[string]bool, len(cfg.Sortable))
	for _, col := range cfg.Sortable {
		sortable[col] = true
	}
	return &Service[T]{db: db, cfg: cfg, sortable: sortable}
}

// Filter holds the queryable fields of a paginated list call. Name is
// an exact match.
type Filter struct {
	Name string
}

// Query returns one page of entities matching the filter, with the
// parent association resolved when the entity kind has one.
func (s *Service[T]) Query(ctx context.Context, filter Filter, opts PageOptions) (*Page[T], error) {
	opts = opts.withDefaults()

	order, err := ParseSort(opts.SortBy, s.sortable)
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(new(T))
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s records: %w", s.cfg.Name, err)
	}

	if order != "" {
		q = q.Order(order)
	}
	if s.cfg.ParentAssoc != "" {
		q = q.Preload(s.cfg.ParentAssoc)
	}

	results := make([]T, 0, opts.Limit)
	offset := (opts.Page - 1) * opts.Limit
	if err := q.Limit(opts.Limit).Offset(offset).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", s.cfg.Name, err)
	}

	return &Page[T]{
		Results:      results,
		Page:         opts.Page,
		Limit:        opts.Limit,
		TotalPages:   totalPages(total, opts.Limit),
		TotalResults: total,
	}, nil
}

// Get fetches one entity by id.
func (s *Service[T]) Get(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := s.db.WithContext(ctx).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %d: %w", s.cfg.Name, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s %d: %w", s.cfg.Name, id, err)
	}
	return &entity, nil
}

// Create inserts a new entity after the duplicate and parent checks.
func (s *Service[T]) Create(ctx context.Context, entity *T) error {
	if err := s.checkUnique(ctx, entity, 0); err != nil {
		return err
	}
	if err := s.checkParent(ctx, entity); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create %s: %w", s.cfg.Name, err)
	}
	return nil
}

// CreateMany inserts sibling entities sharing one parent in a single
// batch. The parent check runs once; the entities are expected to
// carry the same reference.
func (s *Service[T]) CreateMany(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	if err := s.checkParent(ctx, &entities[0]); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&entities).Error; err != nil {
		return fmt.Errorf("create %s batch: %w", s.cfg.Name, err)
	}
	return nil
}

// Update fetches the entity, applies the caller's changes and saves the
// result, running the duplicate check with the record's own id excluded
// so an update that keeps the name does not read as a collision.
func (s *Service[T]) Update(ctx context.Context, id uint, apply func(*T)) (*T, error) {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	apply(entity)

	if err := s.checkUnique(ctx, entity, id); err != nil {
		return nil, err
	}
	if err := s.checkParent(ctx, entity); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(entity).Error; err != nil {
		return nil, fmt.Errorf("update %s %d: %w", s.cfg.Name, id, err)
	}
	return entity, nil
}

// Delete removes one entity by id, running any hooks (e.g. object
// storage cleanup) before the record goes away. A hook failure aborts
// the delete so the side effect never silently diverges from the store.
func (s *Service[T]) Delete(ctx context.Context, id uint, hooks ...func(*T) error) (*T, error) {
	entity, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, hook := range hooks {
		if err := hook(entity); err != nil {
			return nil, fmt.Errorf("delete %s %d: %w", s.cfg.Name, id, err)
		}
	}
	if err := s.db.WithContext(ctx).Delete(entity).Error; err != nil {
		return nil, fmt.Errorf("delete %s %d: %w", s.cfg.Name, id, err)
	}
	return entity, nil
}

// BulkResult reports the outcome of a DeleteMany call. The operation is
// not atomic: entries in Deleted are gone even when NotFound is
// non-empty, and nothing is rolled back.
type BulkResult[T any] struct {
	Deleted  []T
	NotFound []uint
}

// DeleteMany deletes each id independently and concurrently, gathering
// per-id outcomes. Ids within one call may interleave arbitrarily with
// other requests; no ordering is guaranteed across them. An unexpected
// store failure on any id aborts the whole call.
func (s *Service[T]) DeleteMany(ctx context.Context, ids []uint, hooks ...func(*T) error) (*BulkResult[T], error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		result   BulkResult[T]
		firstErr error
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			entity, err := s.Delete(ctx, id, hooks...)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrNotFound):
				result.NotFound = append(result.NotFound, id)
			case err != nil:
				if firstErr == nil {
					firstErr = err
				}
			default:
				result.Deleted = append(result.Deleted, *entity)
			}
		}(id)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return &result, nil
}

// ParentExists reports whether an id resolves in the configured parent
// table. Always true for entity kinds without a parent.
func (s *Service[T]) ParentExists(ctx context.Context, id uint) (bool, error) {
	if s.cfg.ParentTable == "" {
		return true, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Table(s.cfg.ParentTable).Where("id = ?", id).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check %s parent %d: %w", s.cfg.Name, id, err)
	}
	return n > 0, nil
}

func (s *Service[T]) checkUnique(ctx context.Context, entity *T, excludeID uint) error {
	u, ok := any(entity).(Unique)
	if !ok {
		return nil
	}

	fields := u.UniqueBy()
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	var (
		conds []string
		args  []interface{}
	)
	for _, col := range cols {
		if v := fields[col]; v != "" {
			conds = append(conds, col+" = ?")
			args = append(args, v)
		}
	}
	if len(conds) == 0 {
		return nil
	}

	q := s.db.WithContext(ctx).Model(new(T)).Where(strings.Join(conds, " OR "), args...)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return fmt.Errorf("check %s duplicates: %w", s.cfg.Name, err)
	}
	if n > 0 {
		return fmt.Errorf("%s: %w", s.cfg.Name, ErrDuplicate)
	}
	return nil
}

func (s *Service[T]) checkParent(ctx context.Context, entity *T) error {
	p, ok := any(entity).(Parented)
	if !ok || s.cfg.ParentTable == "" {
		return nil
	}
	id := p.ParentID()
	if id == nil {
		return nil
	}

	exists, err := s.ParentExists(ctx, *id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%s parent %d: %w", s.cfg.Name, *id, ErrParentNotFound)
	}
	return nil
}
