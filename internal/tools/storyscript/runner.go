// Package storyscript plays scripted stories games written in Lua.
package storyscript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/louisbranch/stories/internal/platform/id"
	"github.com/louisbranch/stories/internal/platform/logging"
	"github.com/louisbranch/stories/internal/random"
	"github.com/louisbranch/stories/internal/services/stories/content"
	"github.com/louisbranch/stories/internal/services/stories/engine"
	"github.com/louisbranch/stories/internal/services/stories/gameid"
	"go.uber.org/zap"
)

// AssertionMode controls what a failed expectation does.
type AssertionMode int

const (
	// AssertionStrict stops the run at the first failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed expectations and keeps going.
	AssertionLogOnly
)

// Config controls script execution.
type Config struct {
	Content    *content.Loader
	Assertions AssertionMode
	Verbose    bool
	Logger     *zap.Logger
	// Out receives the transcript of commands and their messages.
	Out io.Writer
	Now func() time.Time
}

// Report summarizes a run.
type Report struct {
	GameID     string
	Seed       int64
	Commands   int
	Terminated bool
	Failures   []string
}

// Runner plays scripts against an in-process engine.
type Runner struct {
	content    *content.Loader
	assertions AssertionMode
	verbose    bool
	logger     *zap.Logger
	out        io.Writer
	now        func() time.Time
}

// NewRunner prepares a runner, loading the embedded content when none is given.
func NewRunner(cfg Config) (*Runner, error) {
	loader := cfg.Content
	if loader == nil {
		var err error
		if loader, err = content.Default(); err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Runner{
		content:    loader,
		assertions: cfg.Assertions,
		verbose:    cfg.Verbose,
		logger:     logging.OrNop(cfg.Logger),
		out:        out,
		now:        now,
	}, nil
}

// RunFile loads and plays the script at path.
func RunFile(ctx context.Context, cfg Config, path string) (Report, error) {
	runner, err := NewRunner(cfg)
	if err != nil {
		return Report{}, err
	}
	script, err := LoadFile(path)
	if err != nil {
		return Report{}, err
	}
	return runner.Run(ctx, script)
}

// Run plays every step of script. Play stops after a command terminates the
// game; expectations that follow it are still checked.
func (r *Runner) Run(ctx context.Context, script *Script) (Report, error) {
	if script == nil {
		return Report{}, errors.New("script is required")
	}
	game, report, err := r.newGame(script)
	if err != nil {
		return report, err
	}
	r.logf("script start: %s (%d steps, game %s, seed %d)", script.Name, len(script.Steps), report.GameID, report.Seed)

	var last *engine.Result
	for index, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if report.Terminated && step.Kind != StepExpect {
			r.logf("step %d skipped after game end: %s", index+1, step.Kind)
			continue
		}
		switch step.Kind {
		case StepPlayer:
			joined, err := game.AddPlayer(stringArg(step, "name"), stringArg(step, "initials"), stringArg(step, "role"))
			if err != nil {
				return report, fmt.Errorf("step %d (%s): %w", index+1, step.Kind, err)
			}
			fmt.Fprintf(r.out, "+ %s (%s) player# %d\n", joined.Name, joined.Initials, joined.Number)
		case StepCmd:
			line, actor := stringArg(step, "line"), stringArg(step, "actor")
			res := game.Execute(line, actor)
			last = &res
			report.Commands++
			r.transcript(line, actor, res)
			if res.Status == engine.StatusTerminate {
				report.Terminated = true
			}
		case StepExpect:
			if failure := expectation(step, last); failure != "" {
				failure = fmt.Sprintf("step %d: %s", index+1, failure)
				if r.assertions == AssertionStrict {
					report.Failures = append(report.Failures, failure)
					return report, errors.New(failure)
				}
				r.logger.Warn("expectation failed", zap.String("script", script.Name), zap.String("failure", failure))
				report.Failures = append(report.Failures, failure)
			}
		default:
			return report, fmt.Errorf("step %d: unknown step kind %q", index+1, step.Kind)
		}
	}
	r.logf("script done: %s", script.Name)
	return report, nil
}

func (r *Runner) newGame(script *Script) (*engine.Game, Report, error) {
	seed := script.Seed
	if !script.HasSeed {
		var err error
		if seed, err = random.NewSeed(); err != nil {
			return nil, Report{}, err
		}
	}
	report := Report{Seed: seed}

	params, err := scriptParameters(script.Parameters)
	if err != nil {
		return nil, report, err
	}
	ids, err := gameid.New("script", seed, gameid.WithClock(r.now))
	if err != nil {
		return nil, report, err
	}
	if report.GameID, err = ids.Next(); err != nil {
		return nil, report, err
	}
	cards, err := r.content.Build(script.Genre, params.CharacterAlias, random.New(seed))
	if err != nil {
		return nil, report, err
	}
	game, err := engine.New(engine.Config{
		ID:         report.GameID,
		Genre:      strings.ToLower(script.Genre),
		Cards:      cards,
		Parameters: params,
		Seed:       seed,
		Logger:     r.logger,
		NewID:      id.NewID,
	})
	if err != nil {
		return nil, report, err
	}
	return game, report, nil
}

// scriptParameters overlays the Lua params table on the defaults.
func scriptParameters(values map[string]any) (engine.Parameters, error) {
	params := engine.DefaultParameters()
	if len(values) == 0 {
		return params, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return params, fmt.Errorf("encode params: %w", err)
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return params, fmt.Errorf("decode params: %w", err)
	}
	return params, nil
}

func expectation(step Step, last *engine.Result) string {
	if last == nil {
		return "expect has no command result to check"
	}
	want := engine.Status(stringArg(step, "status"))
	if last.Status != want {
		return fmt.Sprintf("status = %s, want %s (%s)", last.Status, want, last.Message)
	}
	if contains := stringArg(step, "contains"); contains != "" && !strings.Contains(last.Message, contains) {
		return fmt.Sprintf("message %q does not contain %q", last.Message, contains)
	}
	return ""
}

func (r *Runner) transcript(line, actor string, res engine.Result) {
	prompt := "> "
	if actor != "" {
		prompt = actor + "> "
	}
	fmt.Fprintf(r.out, "%s%s\n", prompt, line)
	if msg := strings.TrimSpace(res.Message); msg != "" {
		fmt.Fprintln(r.out, msg)
	}
	if res.Status == engine.StatusError {
		fmt.Fprintf(r.out, "[%s]\n", res.Kind)
	}
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose {
		return
	}
	r.logger.Sugar().Infof(format, args...)
}
