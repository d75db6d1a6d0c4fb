package content

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

func TestReadLines(t *testing.T) {
	input := strings.Join([]string{
		"-- comment",
		"",
		"  first line  ",
		"continued \\",
		"across \\",
		"three",
		"last",
	}, "\n")
	got, err := ReadLines(strings.NewReader(input))
	if err != nil {
		t.Fatalf("read lines: %v", err)
	}
	want := []string{"first line\n", "continued \nacross \nthree\n", "last\n"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"genres/test/titles_test.txt":             {Data: []byte("T1\nT2\nT3\n")},
		"genres/test/opening_lines_test.txt":      {Data: []byte("O1\n")},
		"genres/test/opening_storylines_test.txt": {Data: []byte("OS1\n")},
		"genres/test/storylines_test.txt":         {Data: []byte("Nick walks.\nZoë waits.\n")},
		"genres/test/closings_test.txt":           {Data: []byte("C1\n")},
	}
}

func TestBuildCapsCategoriesAndAddsActions(t *testing.T) {
	tmpl := Template{
		Categories: []CategorySpec{
			{Category: card.CategoryTitle, MaximumCount: 2},
			{Category: card.CategoryOpening, MaximumCount: 5},
			{Category: card.CategoryOpeningStory, MaximumCount: 5},
			{Category: card.CategoryStory, MaximumCount: 5},
			{Category: card.CategoryClosing, MaximumCount: 5},
		},
		Actions: []ActionSpec{
			{Action: card.ActionMeanwhile, Text: "Meanwhile...", Quantity: 2, MinArguments: 1, MaxArguments: 1, StoryElement: 1},
		},
	}
	loader := NewLoader(testFS(), "genres", tmpl)
	cards, err := loader.Build("Test", map[string]string{"Nick": "Brian", "Zoë": "Ann"}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(cards) != 8 {
		t.Fatalf("expected 8 cards, got %d", len(cards))
	}
	counts := card.NewList(cards...).CountByCategory()
	if counts[card.CategoryTitle] != 2 || counts[card.CategoryAction] != 2 {
		t.Fatalf("unexpected counts %v", counts)
	}
	for i, c := range cards {
		if c.Number != i {
			t.Fatalf("expected sequential numbers, card %d has %d", i, c.Number)
		}
		if strings.Contains(c.Text, "Nick") || strings.Contains(c.Text, "Zoë") {
			t.Fatalf("expected alias substitution, got %q", c.Text)
		}
	}
	last := cards[len(cards)-1]
	if last.Action != card.ActionMeanwhile || !last.StoryElement || last.Text != "Meanwhile...\n" {
		t.Fatalf("unexpected action card %+v", last)
	}
}

func TestBuildUnknownGenre(t *testing.T) {
	loader := NewLoader(testFS(), "genres", Template{})
	for _, genre := range []string{"western", "", "../test"} {
		_, err := loader.Build(genre, nil, rand.New(rand.NewSource(1)))
		if apperrors.CodeOf(err) != apperrors.CodeUnknownGenre {
			t.Fatalf("genre %q: expected unknown genre, got %v", genre, err)
		}
	}
}

func TestDefaultLoaderBuildsEveryGenre(t *testing.T) {
	loader, err := Default()
	if err != nil {
		t.Fatalf("default loader: %v", err)
	}
	genres, err := loader.Genres()
	if err != nil {
		t.Fatalf("genres: %v", err)
	}
	if !reflect.DeepEqual(genres, []string{"horror", "noir", "romance"}) {
		t.Fatalf("unexpected genres %v", genres)
	}
	for _, genre := range genres {
		cards, err := loader.Build(genre, nil, rand.New(rand.NewSource(7)))
		if err != nil {
			t.Fatalf("build %s: %v", genre, err)
		}
		counts := card.NewList(cards...).CountByCategory()
		for _, category := range card.Categories {
			if counts[category] == 0 {
				t.Fatalf("%s deck has no %s cards", genre, category)
			}
		}
	}
}

func TestParseTemplateRejectsUnknownAction(t *testing.T) {
	_, err := ParseTemplate([]byte(`{"action_types":[{"action_type":"juggle","quantity":1}]}`))
	if err == nil {
		t.Fatal("expected error")
	}
}
