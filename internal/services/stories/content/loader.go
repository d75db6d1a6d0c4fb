package content

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"math/rand"
	"path"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
	"github.com/louisbranch/stories/internal/services/stories/domain/card"
)

// GenresRoot is the genre directory within FS.
const GenresRoot = "data/genres"

var categoryFiles = map[card.Category]string{
	card.CategoryTitle:        "titles_",
	card.CategoryOpening:      "opening_lines_",
	card.CategoryOpeningStory: "opening_storylines_",
	card.CategoryStory:        "storylines_",
	card.CategoryClosing:      "closings_",
}

// Loader builds decks from a template and genre text files.
type Loader struct {
	fsys     fs.FS
	root     string
	template Template
}

// NewLoader reads genre files under root in fsys.
func NewLoader(fsys fs.FS, root string, tmpl Template) *Loader {
	return &Loader{fsys: fsys, root: root, template: tmpl}
}

// Default returns a loader over the embedded content.
func Default() (*Loader, error) {
	tmpl, err := LoadTemplate(FS, TemplatePath)
	if err != nil {
		return nil, err
	}
	return NewLoader(FS, GenresRoot, tmpl), nil
}

// Template returns the loader's deck template.
func (l *Loader) Template() Template {
	return l.template
}

// Genres lists the available genres in name order.
func (l *Loader) Genres() ([]string, error) {
	entries, err := fs.ReadDir(l.fsys, l.root)
	if err != nil {
		return nil, fmt.Errorf("read genres: %w", err)
	}
	var genres []string
	for _, entry := range entries {
		if entry.IsDir() {
			genres = append(genres, entry.Name())
		}
	}
	sort.Strings(genres)
	return genres, nil
}

// Build creates every card for genre. Each category's lines are shuffled
// with rng and capped at the template maximum, then action cards are
// appended. Character names are replaced by their aliases.
func (l *Loader) Build(genre string, aliases map[string]string, rng *rand.Rand) ([]*card.Card, error) {
	genre = strings.ToLower(strings.TrimSpace(genre))
	if genre == "" || strings.ContainsAny(genre, `/\.`) {
		return nil, unknownGenre(genre)
	}
	if _, err := fs.Stat(l.fsys, path.Join(l.root, genre)); err != nil {
		return nil, unknownGenre(genre)
	}

	var cards []*card.Card
	number := 0
	for _, spec := range l.template.Categories {
		prefix, ok := categoryFiles[spec.Category]
		if !ok {
			continue
		}
		lines, err := l.readFile(path.Join(l.root, genre, prefix+genre+".txt"))
		if err != nil {
			return nil, err
		}
		rng.Shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })
		if len(lines) > spec.MaximumCount {
			lines = lines[:spec.MaximumCount]
		}
		for _, line := range lines {
			cards = append(cards, card.NewStory(number, spec.Category, aliasNames(line, aliases)))
			number++
		}
	}
	for _, spec := range l.template.Actions {
		for i := 0; i < spec.Quantity; i++ {
			cards = append(cards, card.NewAction(number, spec.Action, spec.Text+"\n",
				spec.MinArguments, spec.MaxArguments, spec.StoryElement == 1))
			number++
		}
	}
	return cards, nil
}

func (l *Loader) readFile(name string) ([]string, error) {
	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines splits card text into lines. Blank lines and lines starting with
// "--" are skipped; a trailing backslash joins the next line with a newline.
// Every returned line ends with a newline.
func ReadLines(r io.Reader) ([]string, error) {
	var (
		lines   []string
		pending []string
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if strings.HasSuffix(line, `\`) {
			pending = append(pending, strings.TrimSuffix(line, `\`))
			continue
		}
		pending = append(pending, line)
		lines = append(lines, strings.Join(pending, "\n")+"\n")
		pending = nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read card text: %w", err)
	}
	if len(pending) > 0 {
		lines = append(lines, strings.Join(pending, "\n")+"\n")
	}
	return lines, nil
}

func aliasNames(text string, aliases map[string]string) string {
	replaced, _ := card.ReplaceNames(text, aliases)
	return replaced
}

func unknownGenre(genre string) error {
	return apperrors.WithMetadata(apperrors.CodeUnknownGenre,
		fmt.Sprintf("unknown genre %q", genre),
		map[string]string{"Genre": genre})
}
