package storyscript

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scriptTypeName = "script"

// Step kinds.
const (
	StepPlayer = "player"
	StepCmd    = "cmd"
	StepExpect = "expect"
)

// Script is a game recorded as Lua steps.
type Script struct {
	Name       string
	Genre      string
	Seed       int64
	HasSeed    bool
	Parameters map[string]any
	Steps      []Step
}

// Step is one scripted action.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadFile runs the Lua file at path and returns the Script it builds.
func LoadFile(path string) (*Script, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	script, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(script.Name) == "" {
		script.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return script, nil
}

// LoadString runs Lua source and returns the Script it builds.
func LoadString(name, source string) (*Script, error) {
	state := newState()
	if err := lua.LoadString(state, source); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	script, err := runChunk(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(script.Name) == "" {
		script.Name = name
	}
	return script, nil
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)

	lua.NewMetaTable(state, scriptTypeName)
	state.NewTable()
	lua.SetFunctions(state, scriptMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, scriptConstructor, 0)
	state.SetGlobal("Script")
	return state
}

func runChunk(state *lua.State) (*Script, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("story script must return a Script")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	script, ok := ud.(*Script)
	if !ok || script == nil {
		return nil, fmt.Errorf("story script returned an invalid Script")
	}
	return script, nil
}

var scriptConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scriptNew},
}

var scriptMethods = []lua.RegistryFunction{
	{Name: "player", Function: scriptPlayer},
	{Name: "cmd", Function: scriptCmd},
	{Name: "expect", Function: scriptExpect},
}

// Script.new(name [, {genre=, seed=, params={...}}])
func scriptNew(state *lua.State) int {
	script := &Script{Name: lua.OptString(state, 1, ""), Genre: "horror"}
	opts := optionalTable(state, 2)
	if genre, ok := opts["genre"].(string); ok && genre != "" {
		script.Genre = genre
	}
	if seed, ok := opts["seed"].(int); ok {
		script.Seed = int64(seed)
		script.HasSeed = true
	}
	if params, ok := opts["params"].(map[string]any); ok {
		script.Parameters = params
	}
	state.PushUserData(script)
	lua.SetMetaTableNamed(state, scriptTypeName)
	return 1
}

// script:player(name, initials [, role])
func scriptPlayer(state *lua.State) int {
	script := checkScript(state)
	appendStep(script, StepPlayer, map[string]any{
		"name":     lua.CheckString(state, 2),
		"initials": lua.CheckString(state, 3),
		"role":     lua.OptString(state, 4, ""),
	})
	state.PushValue(1)
	return 1
}

// script:cmd(line [, actor])
func scriptCmd(state *lua.State) int {
	script := checkScript(state)
	appendStep(script, StepCmd, map[string]any{
		"line":  lua.CheckString(state, 2),
		"actor": lua.OptString(state, 3, ""),
	})
	state.PushValue(1)
	return 1
}

// script:expect(status [, message_substring])
func scriptExpect(state *lua.State) int {
	script := checkScript(state)
	if len(script.Steps) == 0 {
		lua.Errorf(state, "expect must follow a cmd")
		return 0
	}
	appendStep(script, StepExpect, map[string]any{
		"status":   lua.CheckString(state, 2),
		"contains": lua.OptString(state, 3, ""),
	})
	state.PushValue(1)
	return 1
}

func checkScript(state *lua.State) *Script {
	ud := lua.CheckUserData(state, 1, scriptTypeName)
	if script, ok := ud.(*Script); ok && script != nil {
		return script
	}
	lua.ArgumentError(state, 1, "script expected")
	return nil
}

func appendStep(script *Script, kind string, args map[string]any) {
	if script == nil {
		return
	}
	script.Steps = append(script.Steps, Step{Kind: kind, Args: args})
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		if math.Mod(value, 1) == 0 {
			return int(value)
		}
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToMap(state, index)
	default:
		return nil
	}
}

func stringArg(step Step, key string) string {
	value, _ := step.Args[key].(string)
	return value
}
