package storyscript

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadStringBuildsSteps(t *testing.T) {
	script, err := LoadString("inline", `
local s = Script.new("", {genre = "romance", seed = 11, params = {story_length = 3, character_alias = {Nick = "Brian"}}})
s:player("Alice", "AL", "director"):cmd("start")
s:cmd("draw", "AL"):expect("needs_player_choice")
return s
`)
	if err != nil {
		t.Fatalf("load script: %v", err)
	}
	if script.Name != "inline" || script.Genre != "romance" || script.Seed != 11 || !script.HasSeed {
		t.Fatalf("unexpected script header %+v", script)
	}
	if got := script.Parameters["story_length"]; got != 3 {
		t.Fatalf("story_length = %v", got)
	}
	alias, ok := script.Parameters["character_alias"].(map[string]any)
	if !ok || alias["Nick"] != "Brian" {
		t.Fatalf("character_alias = %v", script.Parameters["character_alias"])
	}

	kinds := []string{StepPlayer, StepCmd, StepCmd, StepExpect}
	if len(script.Steps) != len(kinds) {
		t.Fatalf("steps = %d, want %d", len(script.Steps), len(kinds))
	}
	for i, kind := range kinds {
		if script.Steps[i].Kind != kind {
			t.Fatalf("step %d kind = %q, want %q", i, script.Steps[i].Kind, kind)
		}
	}
	if script.Steps[0].Args["role"] != "director" {
		t.Fatalf("player role = %v", script.Steps[0].Args["role"])
	}
	if script.Steps[2].Args["actor"] != "AL" {
		t.Fatalf("cmd actor = %v", script.Steps[2].Args["actor"])
	}
}

func TestLoadDefaults(t *testing.T) {
	script, err := LoadString("defaults", `return Script.new("d")`)
	if err != nil {
		t.Fatalf("load script: %v", err)
	}
	if script.Genre != "horror" || script.HasSeed {
		t.Fatalf("unexpected defaults %+v", script)
	}
}

func TestLoadRejectsBadScripts(t *testing.T) {
	tests := map[string]string{
		"no return":            `local s = Script.new("x")`,
		"wrong return":         `return 42`,
		"syntax":               `return Script.new(`,
		"expect before cmd":    `local s = Script.new("x"); s:expect("success"); return s`,
		"missing initials":     `local s = Script.new("x"); s:player("Alice"); return s`,
		"method on non-script": `local s = Script.new("x"); s.cmd({}, "start"); return s`,
	}
	for name, source := range tests {
		if _, err := LoadString(name, source); err == nil {
			t.Fatalf("%s: expected load error", name)
		}
	}
}

func TestLoadFileNamesScriptAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short_story.lua")
	if err := os.WriteFile(path, []byte(`return Script.new()`), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}
	script, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if script.Name != "short_story" {
		t.Fatalf("name = %q", script.Name)
	}
}
