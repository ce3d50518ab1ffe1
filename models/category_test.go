package models

import "testing"

func TestDefaultCategorySet(t *testing.T) {
	set := DefaultCategorySet()

	if len(set) != 10 {
		t.Fatalf("expected 10 default categories, got %d", len(set))
	}
	if set[0].ID != "default-0" || set[9].ID != "default-9" {
		t.Errorf("unexpected ids %s..%s", set[0].ID, set[9].ID)
	}
	if set[0].Name != "Food & Dining" {
		t.Errorf("unexpected first category %s", set[0].Name)
	}
	if set[9].Name != "Other" {
		t.Errorf("unexpected last category %s", set[9].Name)
	}

	seen := make(map[string]bool)
	for _, c := range set {
		if !c.IsActive {
			t.Errorf("default category %s must be active", c.Name)
		}
		if seen[c.Name] {
			t.Errorf("duplicate category name %s", c.Name)
		}
		seen[c.Name] = true
	}
}

func TestDefaultCategorySetIsACopy(t *testing.T) {
	first := DefaultCategorySet()
	first[0].Name = "Mutated"

	second := DefaultCategorySet()
	if second[0].Name != "Food & Dining" {
		t.Error("callers must not share backing storage")
	}
}
