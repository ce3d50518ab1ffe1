package store

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"spendly/backend/models"
)

// CategoryStore keeps a user's active categories in memory, synced
// with the live backend collection. Whenever the live set is empty —
// no data yet, everything deactivated, or the subscription failed —
// the fixed default set is served in its place with synthetic ids, so
// callers never observe an empty category list.
type CategoryStore struct {
	backend  DocumentStore
	uid      string
	validate *validator.Validate
	onChange func()

	mu         sync.RWMutex
	categories []models.Category
	loading    bool

	sub  *Subscription
	done chan struct{}
}

// NewCategoryStore establishes the snapshot subscription for the
// given user. Close must be called to release the backend listener.
func NewCategoryStore(ctx context.Context, backend DocumentStore, uid string, onChange func()) (*CategoryStore, error) {
	s := &CategoryStore{
		backend:    backend,
		uid:        uid,
		validate:   validator.New(),
		onChange:   onChange,
		categories: models.DefaultCategorySet(),
		loading:    true,
		done:       make(chan struct{}),
	}

	sub, err := backend.Subscribe(ctx, s.path(), Query{
		Filters: []Filter{{Field: "isActive", Op: "==", Value: true}},
	})
	if err != nil {
		log.Printf("Error setting up categories listener for %s: %v", uid, err)
		return nil, &models.BackendError{Op: "subscribe categories", Err: err}
	}
	s.sub = sub

	go s.consume()
	return s, nil
}

func (s *CategoryStore) path() string {
	return "users/" + s.uid + "/categories"
}

func (s *CategoryStore) consume() {
	defer close(s.done)
	for snap := range s.sub.C {
		s.apply(snap)
		if s.onChange != nil {
			s.onChange()
		}
	}
}

func (s *CategoryStore) apply(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if snap.Err != nil {
		// Defaults keep the category surface usable.
		s.categories = models.DefaultCategorySet()
		return
	}

	if len(snap.Docs) == 0 {
		s.categories = models.DefaultCategorySet()
		return
	}

	categories := make([]models.Category, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		categories = append(categories, decodeCategory(doc))
	}
	s.categories = categories
}

func decodeCategory(doc Document) models.Category {
	c := models.Category{
		ID:     doc.ID,
		Name:   toString(doc.Data["name"]),
		Icon:   toString(doc.Data["icon"]),
		Color:  toString(doc.Data["color"]),
		UserID: toString(doc.Data["userId"]),
	}
	if active, ok := doc.Data["isActive"].(bool); ok {
		c.IsActive = active
	}
	if t, ok := doc.Data["createdAt"].(time.Time); ok {
		c.CreatedAt = t
	}
	if t, ok := doc.Data["updatedAt"].(time.Time); ok {
		c.UpdatedAt = t
	}
	return c
}

// Categories returns a copy of the current in-memory set.
func (s *CategoryStore) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// Active returns the current set filtered to active categories. Pure
// and synchronous, no backend round trip.
func (s *CategoryStore) Active() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Category
	for _, c := range s.categories {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out
}

// Loading reports whether the first snapshot is still pending.
func (s *CategoryStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// ByName finds a category by case-insensitive name match.
func (s *CategoryStore) ByName(name string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return models.Category{}, false
}

// ByID finds a category by id.
func (s *CategoryStore) ByID(id string) (models.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

// Exists reports whether another category already uses the name,
// compared case-insensitively. excludeID skips the category being
// edited.
func (s *CategoryStore) Exists(name, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) && c.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *CategoryStore) validateData(data models.CategoryData) error {
	if err := s.validate.Struct(data); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return &models.ValidationError{
				Field:   strings.ToLower(errs[0].Field()),
				Message: errs[0].Field() + " is required",
			}
		}
		return &models.ValidationError{Message: err.Error()}
	}
	return nil
}

// Add writes a new category owned by the user.
func (s *CategoryStore) Add(ctx context.Context, data models.CategoryData) error {
	if err := s.validateData(data); err != nil {
		return err
	}

	now := time.Now()
	_, err := s.backend.Add(ctx, s.path(), categoryDoc(data, s.uid, now, now))
	if err != nil {
		log.Printf("Error adding category for %s: %v", s.uid, err)
		return &models.BackendError{Op: "add category", Err: err}
	}
	return nil
}

// Update overwrites an existing category's fields.
func (s *CategoryStore) Update(ctx context.Context, id string, data models.CategoryData) error {
	if err := s.validateData(data); err != nil {
		return err
	}

	doc := map[string]interface{}{
		"name":      data.Name,
		"icon":      data.Icon,
		"color":     data.Color,
		"isActive":  data.IsActive,
		"updatedAt": time.Now(),
	}
	if err := s.backend.Update(ctx, s.path(), id, doc); err != nil {
		log.Printf("Error updating category %s for %s: %v", id, s.uid, err)
		return &models.BackendError{Op: "update category", Err: err}
	}
	return nil
}

// Delete deactivates a category. The record is retained so expenses
// referencing it keep their label.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	doc := map[string]interface{}{
		"isActive":  false,
		"updatedAt": time.Now(),
	}
	if err := s.backend.Update(ctx, s.path(), id, doc); err != nil {
		log.Printf("Error deleting category %s for %s: %v", id, s.uid, err)
		return &models.BackendError{Op: "delete category", Err: err}
	}
	return nil
}

// Seed writes the default category set for a user who owns no
// categories at all. A user with any categories, active or not, is
// left untouched. Failures are logged; callers on UI paths ignore the
// returned error.
func (s *CategoryStore) Seed(ctx context.Context) error {
	existing, err := s.backend.GetAll(ctx, s.path())
	if err != nil {
		log.Printf("Error checking categories before seeding for %s: %v", s.uid, err)
		return &models.BackendError{Op: "seed categories", Err: err}
	}
	if len(existing) > 0 {
		return nil
	}

	log.Printf("Seeding default categories for user %s", s.uid)

	now := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, data := range models.DefaultCategories {
		g.Go(func() error {
			_, err := s.backend.Add(gctx, s.path(), categoryDoc(data, s.uid, now, now))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("Error seeding default categories for %s: %v", s.uid, err)
		return &models.BackendError{Op: "seed categories", Err: err}
	}
	return nil
}

func categoryDoc(data models.CategoryData, uid string, created, updated time.Time) map[string]interface{} {
	return map[string]interface{}{
		"name":      data.Name,
		"icon":      data.Icon,
		"color":     data.Color,
		"isActive":  data.IsActive,
		"userId":    uid,
		"createdAt": created,
		"updatedAt": updated,
	}
}

// Close releases the subscription and waits for the consumer to
// drain.
func (s *CategoryStore) Close() {
	s.sub.Close()
	<-s.done
}
