package hand

import (
	"testing"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

func storyNumbers(h *Hand) []int {
	var numbers []int
	for _, c := range h.Story().Cards() {
		numbers = append(numbers, c.Number)
	}
	return numbers
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlayTitleReplacesExistingTitle(t *testing.T) {
	h := New()
	h.Add(card.NewStory(1, card.CategoryTitle, "Title1\n"), card.NewStory(2, card.CategoryTitle, "Title2\n"))

	if _, err := h.Play(1, nil); err != nil {
		t.Fatalf("play title1: %v", err)
	}
	if _, err := h.Play(2, nil); err != nil {
		t.Fatalf("play title2: %v", err)
	}
	if got := storyNumbers(h); !equalInts(got, []int{2}) {
		t.Fatalf("expected story [2], got %v", got)
	}
	if h.Discards().Find(1) == nil {
		t.Fatal("expected Title1 in the private discard pile")
	}
}

func TestPlayNarrativeInsertsBeforeClosing(t *testing.T) {
	h := New()
	h.Add(
		card.NewStory(10, card.CategoryStory, "L0\n"),
		card.NewStory(11, card.CategoryStory, "L1\n"),
		card.NewStory(12, card.CategoryClosing, "Closing\n"),
		card.NewStory(13, card.CategoryStory, "New\n"),
	)
	for _, n := range []int{10, 11, 12, 13} {
		if _, err := h.Play(n, nil); err != nil {
			t.Fatalf("play %d: %v", n, err)
		}
	}
	if got := storyNumbers(h); !equalInts(got, []int{10, 11, 13, 12}) {
		t.Fatalf("expected [10 11 13 12], got %v", got)
	}
}

func TestPlayFirstTitleGoesFirst(t *testing.T) {
	h := New()
	h.Add(card.NewStory(1, card.CategoryStory, "body\n"), card.NewStory(2, card.CategoryTitle, "title\n"))
	h.Play(1, nil)
	h.Play(2, nil)
	if got := storyNumbers(h); !equalInts(got, []int{2, 1}) {
		t.Fatalf("expected title first, got %v", got)
	}
}

func TestPlayOpeningBeforeTrailingClosing(t *testing.T) {
	h := New()
	h.Add(card.NewStory(1, card.CategoryClosing, "end\n"), card.NewStory(2, card.CategoryOpening, "start\n"))
	h.Play(1, nil)
	h.Play(2, nil)
	if got := storyNumbers(h); !equalInts(got, []int{2, 1}) {
		t.Fatalf("expected opening before closing, got %v", got)
	}
}

func TestPlayActionCards(t *testing.T) {
	h := New()
	h.Add(
		card.NewAction(1, card.ActionDrawNew, "Draw new\n", 1, 4, false),
		card.NewAction(2, card.ActionMeanwhile, "Meanwhile\n", 1, 1, true),
	)
	if _, err := h.Play(1, nil); err != nil {
		t.Fatalf("play draw_new: %v", err)
	}
	if h.Story().Len() != 0 || h.Get(1) != nil {
		t.Fatal("expected non-story action removed from hand but not added to story")
	}
	if _, err := h.Play(2, nil); err != nil {
		t.Fatalf("play meanwhile: %v", err)
	}
	if got := storyNumbers(h); !equalInts(got, []int{2}) {
		t.Fatalf("expected meanwhile in story, got %v", got)
	}
}

func TestPlayAfterLine(t *testing.T) {
	h := New()
	for i := 0; i < 3; i++ {
		h.Add(card.NewStory(i, card.CategoryStory, "line\n"))
		h.Play(i, nil)
	}
	h.Add(card.NewAction(9, card.ActionMeanwhile, "Meanwhile\n", 1, 1, true))
	zero := 0
	if _, err := h.Play(9, &zero); err != nil {
		t.Fatalf("play after line: %v", err)
	}
	if got := storyNumbers(h); !equalInts(got, []int{0, 9, 1, 2}) {
		t.Fatalf("expected [0 9 1 2], got %v", got)
	}
}

func TestPlayUnknownCard(t *testing.T) {
	h := New()
	_, err := h.Play(42, nil)
	if apperrors.CodeOf(err) != apperrors.CodeInvalidCardReference {
		t.Fatalf("expected invalid card reference, got %v", err)
	}
}

func TestInsertAndReplaceValidateLines(t *testing.T) {
	h := New()
	h.Add(card.NewStory(1, card.CategoryStory, "a\n"), card.NewStory(2, card.CategoryStory, "b\n"), card.NewStory(3, card.CategoryStory, "c\n"))
	h.Play(1, nil)

	if _, err := h.Insert(5, 2); apperrors.CodeOf(err) != apperrors.CodeInvalidLineReference {
		t.Fatalf("expected invalid line reference, got %v", err)
	}
	if h.Get(2) == nil {
		t.Fatal("failed insert must not remove the card")
	}
	if _, err := h.Insert(0, 2); err != nil {
		t.Fatalf("insert: %v", err)
	}
	previous, err := h.Replace(0, 3)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if previous.Number != 1 {
		t.Fatalf("expected card 1 replaced, got %d", previous.Number)
	}
	if got := storyNumbers(h); !equalInts(got, []int{3, 2}) {
		t.Fatalf("expected [3 2], got %v", got)
	}
}

func TestDiscardCategoryAndSorted(t *testing.T) {
	h := New()
	h.Add(
		card.NewStory(5, card.CategoryStory, "s\n"),
		card.NewStory(3, card.CategoryTitle, "t\n"),
		card.NewAction(7, card.ActionCompose, "c\n", 1, 40, false),
		card.NewStory(4, card.CategoryTitle, "t2\n"),
	)
	if h.LastDrawn() != 4 {
		t.Fatalf("expected last drawn 4, got %d", h.LastDrawn())
	}
	var order []int
	for _, c := range h.Sorted() {
		order = append(order, c.Number)
	}
	if !equalInts(order, []int{7, 3, 4, 5}) {
		t.Fatalf("expected sorted [7 3 4 5], got %v", order)
	}
	if c := h.AtOrdinal(2); c == nil || c.Number != 3 {
		t.Fatalf("expected ordinal 2 to be card 3, got %v", c)
	}
	removed := h.DiscardCategory(card.CategoryTitle)
	if len(removed) != 2 || h.Size() != 2 || h.Discards().Len() != 2 {
		t.Fatalf("expected both titles discarded, got %d removed, %d held", len(removed), h.Size())
	}
}

func TestPlaceForeignCardAndTakeLine(t *testing.T) {
	h := New()
	c := card.NewStory(30, card.CategoryClosing, "fin\n")
	if err := h.Place(c, nil); err != nil {
		t.Fatalf("place: %v", err)
	}
	if h.Size() != 0 || h.Story().Len() != 1 {
		t.Fatal("placing a foreign card must not touch the hand")
	}
	taken, err := h.TakeLine(0)
	if err != nil || taken != c {
		t.Fatalf("take line: %v %v", taken, err)
	}
	if _, err := h.TakeLine(0); apperrors.CodeOf(err) != apperrors.CodeInvalidLineReference {
		t.Fatalf("expected invalid line reference, got %v", err)
	}
}

func TestPositionalPlaysKeepOneOfEachSingleton(t *testing.T) {
	build := func() *Hand {
		h := New()
		h.Add(
			card.NewStory(1, card.CategoryTitle, "Title\n"),
			card.NewStory(2, card.CategoryOpening, "Opening\n"),
			card.NewStory(3, card.CategoryStory, "Story\n"),
			card.NewStory(4, card.CategoryClosing, "Closing\n"),
		)
		for _, n := range []int{1, 2, 3, 4} {
			if _, err := h.Play(n, nil); err != nil {
				t.Fatalf("play %d: %v", n, err)
			}
		}
		h.Add(
			card.NewStory(11, card.CategoryTitle, "Title2\n"),
			card.NewStory(12, card.CategoryOpening, "Opening2\n"),
			card.NewStory(14, card.CategoryClosing, "Closing2\n"),
		)
		return h
	}
	zero := 0
	tests := []struct {
		name string
		play func(h *Hand) error
	}{
		{name: "insert title", play: func(h *Hand) error { _, err := h.Insert(1, 11); return err }},
		{name: "insert closing", play: func(h *Hand) error { _, err := h.Insert(0, 14); return err }},
		{name: "play opening after line", play: func(h *Hand) error { _, err := h.Play(12, &zero); return err }},
		{name: "replace story with closing", play: func(h *Hand) error { _, err := h.Replace(2, 14); return err }},
		{name: "replace opening with title", play: func(h *Hand) error { _, err := h.Replace(1, 11); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := build()
			err := tt.play(h)
			if apperrors.CodeOf(err) != apperrors.CodeInvalidCardReference {
				t.Fatalf("expected invalid card reference, got %v", err)
			}
			if got := storyNumbers(h); !equalInts(got, []int{1, 2, 3, 4}) {
				t.Fatalf("story changed after rejected play: %v", got)
			}
			if h.Size() != 3 || h.Discards().Len() != 0 {
				t.Fatalf("hand changed after rejected play: %d held, %d discarded", h.Size(), h.Discards().Len())
			}
		})
	}

	h := build()
	previous, err := h.Replace(3, 14)
	if err != nil {
		t.Fatalf("replace closing with closing: %v", err)
	}
	if previous.Number != 4 {
		t.Fatalf("expected closing 4 replaced, got %d", previous.Number)
	}
	if got := storyNumbers(h); !equalInts(got, []int{1, 2, 3, 14}) {
		t.Fatalf("unexpected story %v", got)
	}
}

func TestInsertSingletonIntoStoryWithoutOne(t *testing.T) {
	h := New()
	h.Add(card.NewStory(1, card.CategoryStory, "a\n"), card.NewStory(2, card.CategoryStory, "b\n"))
	h.Play(1, nil)
	h.Play(2, nil)
	h.Add(card.NewStory(5, card.CategoryOpening, "Opening\n"))
	if _, err := h.Insert(0, 5); err != nil {
		t.Fatalf("insert opening: %v", err)
	}
	if got := storyNumbers(h); !equalInts(got, []int{1, 5, 2}) {
		t.Fatalf("expected [1 5 2], got %v", got)
	}
}

func TestTakeKeepsLastDrawn(t *testing.T) {
	h := New()
	h.Add(card.NewStory(1, card.CategoryStory, "a\n"))
	h.Take(card.NewStory(2, card.CategoryStory, "b\n"))
	if h.LastDrawn() != 1 {
		t.Fatalf("expected last drawn 1, got %d", h.LastDrawn())
	}
	if h.Get(2) == nil {
		t.Fatal("expected the taken card in hand")
	}
}
