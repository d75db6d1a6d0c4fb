package command

import "strings"

// Builtin returns a registry holding every game command.
func Builtin() (*Registry, error) {
	r := NewRegistry()
	for _, def := range builtinDefinitions() {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func builtinDefinitions() []Definition {
	return []Definition{
		{Name: NameAdd, MinArgs: 2, MaxArgs: 4, Setup: true,
			Usage: "add player <name> <initials> [role] | add director <initials> | add team <name> <initials,...>",
			Parse: parseAdd},
		{Name: NameAddTeam, MinArgs: 2, MaxArgs: 2, Setup: true,
			Usage: "add_team <name> <initials,...>",
			Parse: parseAddTeam},
		{Name: NameStart, MaxArgs: 0, Setup: true,
			Usage: "start",
			Parse: func([]string) (Request, error) { return StartRequest{}, nil }},
		{Name: NameDone, MaxArgs: 0,
			Usage: "done",
			Parse: func([]string) (Request, error) { return DoneRequest{}, nil }},
		{Name: NameEnd, MaxArgs: 1,
			Usage: "end [round|game]",
			Parse: parseEnd},
		{Name: NameFind, MinArgs: 1, MaxArgs: 2,
			Usage: "find <category> [action]",
			Parse: parseFind},
		{Name: NameDraw, MaxArgs: 3,
			Usage: "draw [new|discard|<category> [action]] [initials]",
			Parse: parseDraw},
		{Name: NameDiscard, MinArgs: 1, MaxArgs: 2,
			Usage: "discard <card> [initials]",
			Parse: parseDiscard},
		{Name: NamePlay, MinArgs: 1, MaxArgs: Unbounded, Rest: true,
			Usage: "play <card|last|#n> [arguments...]",
			Parse: parsePlay},
		{Name: NamePlayType, MinArgs: 1, MaxArgs: Unbounded, Rest: true,
			Usage: "play_type <category> [arguments...]",
			Parse: parsePlayType},
		{Name: NameInsert, MinArgs: 2, MaxArgs: 2,
			Usage: "insert <line> <card>",
			Parse: parseInsert},
		{Name: NameReplace, MinArgs: 2, MaxArgs: 2,
			Usage: "replace <line> <card>",
			Parse: parseReplace},
		{Name: NamePass, MinArgs: 1, MaxArgs: 3,
			Usage: "pass <card> [left|right|any] [initials]",
			Parse: parsePass},
		{Name: NameList, MaxArgs: 4,
			Usage: "list [hand|story] [initials] [numbered|plain] [text|json]",
			Parse: parseList},
		{Name: NameShow, MinArgs: 1, MaxArgs: 1, Setup: true,
			Usage: "show discard|deck|params|all|<category>",
			Parse: func(args []string) (Request, error) { return ShowRequest{What: strings.ToLower(args[0])}, nil }},
		{Name: NameRead, MaxArgs: 2,
			Usage: "read [numbered] [initials]",
			Parse: parseRead},
		{Name: NameStatus, MaxArgs: 1,
			Usage: "status [initials]",
			Parse: func(args []string) (Request, error) { return StatusRequest{Player: firstArg(args)}, nil }},
		{Name: NameInfo, MaxArgs: 1,
			Usage: "info [initials]",
			Parse: func(args []string) (Request, error) { return InfoRequest{Player: firstArg(args)}, nil }},
		{Name: NameTeamInfo, MaxArgs: 1,
			Usage: "team_info [team|all]",
			Parse: func(args []string) (Request, error) { return TeamInfoRequest{Team: firstArg(args)}, nil }},
		{Name: NameSet, MinArgs: 2, MaxArgs: 2, Setup: true, Directed: true,
			Usage: "set <parameter> <value>",
			Parse: func(args []string) (Request, error) {
				return SetRequest{Parameter: strings.ToLower(args[0]), Value: args[1]}, nil
			}},
		{Name: NamePublish, MaxArgs: 1,
			Usage: "publish [initials]",
			Parse: func(args []string) (Request, error) { return PublishRequest{Player: firstArg(args)}, nil }},
		{Name: NameLogMessage, MaxArgs: Unbounded, Rest: true, Setup: true,
			Usage: "log_message <text>",
			Parse: func(args []string) (Request, error) { return LogMessageRequest{Text: strings.Join(args, " ")}, nil }},
		{Name: NameHelp, MaxArgs: 1, Setup: true,
			Usage: "help [command]",
			Parse: func(args []string) (Request, error) { return HelpRequest{Topic: strings.ToLower(firstArg(args))}, nil }},
	}
}
