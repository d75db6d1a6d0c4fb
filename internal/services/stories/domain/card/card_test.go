package card

import "testing"

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
	}{
		{"title", CategoryTitle},
		{"Opening", CategoryOpening},
		{"opening/story", CategoryOpeningStory},
		{"opening_story", CategoryOpeningStory},
		{" STORY ", CategoryStory},
		{"closing", CategoryClosing},
		{"action", CategoryAction},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.input)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("parse %q: expected %s, got %s", tt.input, tt.want, got)
		}
	}
	if _, err := ParseCategory("epilogue"); err == nil {
		t.Fatal("expected unknown category error")
	}
}

func TestParseActionKind(t *testing.T) {
	got, err := ParseActionKind("Steal_Lines")
	if err != nil {
		t.Fatalf("parse action: %v", err)
	}
	if got != ActionStealLines {
		t.Fatalf("expected steal_lines, got %s", got)
	}
	if _, err := ParseActionKind("teleport"); err == nil {
		t.Fatal("expected unknown action error")
	}
	if ActionChangeName.Upper() != "CHANGE_NAME" {
		t.Fatalf("unexpected upper name %s", ActionChangeName.Upper())
	}
}

func TestSortKeyOrdersActionsFirstAndClosingLast(t *testing.T) {
	action := NewAction(90, ActionCompose, "Compose\n", 1, 40, false)
	title := NewStory(5, CategoryTitle, "The Attic\n")
	story := NewStory(1, CategoryStory, "It creaked.\n")
	closing := NewStory(0, CategoryClosing, "The end.\n")

	if action.SortKey() != 1090 {
		t.Fatalf("expected action sort key 1090, got %d", action.SortKey())
	}
	list := NewList(closing, story, title, action)
	sorted := list.Sorted()
	want := []int{90, 5, 1, 0}
	for i, c := range sorted {
		if c.Number != want[i] {
			t.Fatalf("position %d: expected card %d, got %d", i, want[i], c.Number)
		}
	}
}

func TestAcceptsArgs(t *testing.T) {
	c := NewAction(1, ActionChangeName, "Change name\n", 2, 3, false)
	for n, want := range map[int]bool{1: false, 2: true, 3: true, 4: false} {
		if got := c.AcceptsArgs(n); got != want {
			t.Fatalf("AcceptsArgs(%d): expected %v, got %v", n, want, got)
		}
	}
}

func TestCategoryClassification(t *testing.T) {
	for _, c := range []Category{CategoryTitle, CategoryOpening, CategoryClosing} {
		if !c.IsSingleton() || c.IsNarrative() {
			t.Fatalf("%s should be a singleton", c)
		}
	}
	for _, c := range []Category{CategoryOpeningStory, CategoryStory} {
		if c.IsSingleton() || !c.IsNarrative() {
			t.Fatalf("%s should be narrative", c)
		}
	}
	if Category("Prologue").Valid() {
		t.Fatal("expected unknown category to be invalid")
	}
}

func TestCardString(t *testing.T) {
	c := NewStory(12, CategoryStory, "Rain fell.\n")
	if got := c.String(); got != "Story:\t12. Rain fell.\n" {
		t.Fatalf("unexpected card string %q", got)
	}
}
