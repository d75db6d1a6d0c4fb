package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	apperrors "github.com/louisbranch/stories/internal/platform/errors"
)

// Name identifies a command.
type Name string

const (
	NameAdd        Name = "add"
	NameAddTeam    Name = "add_team"
	NameStart      Name = "start"
	NameDone       Name = "done"
	NameEnd        Name = "end"
	NameFind       Name = "find"
	NameDraw       Name = "draw"
	NameDiscard    Name = "discard"
	NamePlay       Name = "play"
	NamePlayType   Name = "play_type"
	NameInsert     Name = "insert"
	NameReplace    Name = "replace"
	NamePass       Name = "pass"
	NameList       Name = "list"
	NameShow       Name = "show"
	NameRead       Name = "read"
	NameStatus     Name = "status"
	NameInfo       Name = "info"
	NameTeamInfo   Name = "team_info"
	NameSet        Name = "set"
	NamePublish    Name = "publish"
	NameLogMessage Name = "log_message"
	NameHelp       Name = "help"
)

// Unbounded marks a Definition without an upper argument limit.
const Unbounded = -1

// Parser turns positional arguments into a typed request. Arity has already
// been checked when it runs.
type Parser func(args []string) (Request, error)

// Definition registers metadata for a command.
type Definition struct {
	Name    Name
	MinArgs int
	MaxArgs int
	// Rest marks the arguments after the first MinArgs as free text. The
	// request receives that text with its original spacing.
	Rest bool
	// Setup commands may run before the game starts, acting as the
	// administrative pseudo-player when no one is seated.
	Setup bool
	// Directed commands are limited to the director or a team lead in
	// collaborative and team games.
	Directed bool
	Usage    string
	Parse    Parser
}

// Registry stores command definitions.
type Registry struct {
	definitions map[Name]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[Name]Definition)}
}

// Register adds a command definition.
func (r *Registry) Register(def Definition) error {
	if r == nil {
		return errors.New("registry is required")
	}
	def.Name = Name(strings.ToLower(strings.TrimSpace(string(def.Name))))
	if def.Name == "" {
		return errors.New("command name is required")
	}
	if def.Parse == nil {
		return fmt.Errorf("command %s: parser is required", def.Name)
	}
	if def.MinArgs < 0 || (def.MaxArgs != Unbounded && def.MaxArgs < def.MinArgs) {
		return fmt.Errorf("command %s: invalid arity %d..%d", def.Name, def.MinArgs, def.MaxArgs)
	}
	if r.definitions == nil {
		r.definitions = make(map[Name]Definition)
	}
	if _, exists := r.definitions[def.Name]; exists {
		return fmt.Errorf("command already registered: %s", def.Name)
	}
	r.definitions[def.Name] = def
	return nil
}

// Lookup returns the definition for name.
func (r *Registry) Lookup(name Name) (Definition, bool) {
	def, ok := r.definitions[Name(strings.ToLower(string(name)))]
	return def, ok
}

// Definitions returns every definition sorted by name.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Parse splits line into a command name and arguments, checks arity and
// builds the typed request.
func (r *Registry) Parse(line string) (Request, Definition, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, Definition{}, apperrors.New(apperrors.CodeInvalidCommand, "Invalid command: \"\"")
	}
	name := Name(strings.ToLower(fields[0]))
	def, ok := r.definitions[name]
	if !ok {
		return nil, Definition{}, apperrors.WithMetadata(apperrors.CodeInvalidCommand,
			fmt.Sprintf("Invalid command: %q", fields[0]),
			map[string]string{"Command": fields[0]})
	}
	args := fields[1:]
	if len(args) < def.MinArgs || (!def.Rest && def.MaxArgs != Unbounded && len(args) > def.MaxArgs) {
		return nil, def, arityError(def, len(args))
	}
	req, err := def.Parse(args)
	if err != nil {
		return nil, def, err
	}
	if t, ok := req.(textRequest); ok && def.Rest {
		req = t.withText(literal(line, 1+def.MinArgs))
	}
	return req, def, nil
}

// literal returns line after its first n fields, keeping the spacing between
// the remaining ones.
func literal(line string, n int) string {
	rest := strings.TrimLeftFunc(line, unicode.IsSpace)
	for i := 0; i < n && rest != ""; i++ {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return strings.TrimRightFunc(rest, unicode.IsSpace)
}

func arityError(def Definition, got int) error {
	max := fmt.Sprint(def.MaxArgs)
	if def.MaxArgs == Unbounded || def.Rest {
		max = "any"
	}
	return apperrors.WithMetadata(apperrors.CodeInvalidArgumentCount,
		fmt.Sprintf("%s takes from %d to %s arguments. You specified %d. Usage: %s", def.Name, def.MinArgs, max, got, def.Usage),
		map[string]string{"Command": string(def.Name), "Min": fmt.Sprint(def.MinArgs), "Max": max, "Got": fmt.Sprint(got)})
}
