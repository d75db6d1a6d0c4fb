package command

import "github.com/louisbranch/stories/internal/services/stories/domain/card"

// Request is a parsed command. The set of implementations is closed.
type Request interface {
	Command() Name
	isRequest()
}

// AddKind selects what an add command creates.
type AddKind string

const (
	AddPlayer   AddKind = "player"
	AddDirector AddKind = "director"
	AddTeam     AddKind = "team"
)

// DrawSource selects where a draw comes from.
type DrawSource string

const (
	DrawNew      DrawSource = "new"
	DrawDiscard  DrawSource = "discard"
	DrawCategory DrawSource = "category"
)

// EndScope selects what an end command closes.
type EndScope string

const (
	EndRound EndScope = "round"
	EndGame  EndScope = "game"
)

// Direction selects who receives a passed card.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
	DirectionAny   Direction = "any"
)

// ListTarget selects which cards a list shows.
type ListTarget string

const (
	ListHand  ListTarget = "hand"
	ListStory ListTarget = "story"
)

// Format selects text or JSON output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// RefKind distinguishes the ways a held card can be named.
type RefKind int

const (
	// RefNumber names a card by its number.
	RefNumber RefKind = iota
	// RefLast names the most recently drawn card.
	RefLast
	// RefOrdinal names a 1-based position in the sorted hand, written #n.
	RefOrdinal
)

// CardRef names a card in a player's hand.
type CardRef struct {
	Kind  RefKind
	Value int
}

type AddPlayerRequest struct {
	Name     string
	Initials string
	Role     string
}

type AddDirectorRequest struct {
	Initials string
}

type AddTeamRequest struct {
	Team    string
	Members []string
}

type StartRequest struct{}

type DoneRequest struct{}

type EndRequest struct {
	Scope EndScope
}

type FindRequest struct {
	Category card.Category
	Action   card.ActionKind
}

type DrawRequest struct {
	Source   DrawSource
	Category card.Category
	Action   card.ActionKind
	Player   string
}

type DiscardRequest struct {
	Card   int
	Player string
}

// PlayRequest plays a held card. Args are passed to action cards untouched;
// Text is the same arguments with their original spacing.
type PlayRequest struct {
	Ref  CardRef
	Args []string
	Text string
}

type PlayTypeRequest struct {
	Category card.Category
	Args     []string
	Text     string
}

type InsertRequest struct {
	Line int
	Card int
}

type ReplaceRequest struct {
	Line int
	Card int
}

type PassRequest struct {
	Card      int
	Direction Direction
	Player    string
}

type ListRequest struct {
	Target   ListTarget
	Player   string
	Numbered bool
	Format   Format
}

type ShowRequest struct {
	What string
}

type ReadRequest struct {
	Numbered bool
	Player   string
}

type StatusRequest struct {
	Player string
}

type InfoRequest struct {
	Player string
}

type TeamInfoRequest struct {
	Team string
}

type SetRequest struct {
	Parameter string
	Value     string
}

type PublishRequest struct {
	Player string
}

type LogMessageRequest struct {
	Text string
}

type HelpRequest struct {
	Topic string
}

func (AddPlayerRequest) Command() Name   { return NameAdd }
func (AddDirectorRequest) Command() Name { return NameAdd }
func (AddTeamRequest) Command() Name     { return NameAddTeam }
func (StartRequest) Command() Name       { return NameStart }
func (DoneRequest) Command() Name        { return NameDone }
func (EndRequest) Command() Name         { return NameEnd }
func (FindRequest) Command() Name        { return NameFind }
func (DrawRequest) Command() Name        { return NameDraw }
func (DiscardRequest) Command() Name     { return NameDiscard }
func (PlayRequest) Command() Name        { return NamePlay }
func (PlayTypeRequest) Command() Name    { return NamePlayType }
func (InsertRequest) Command() Name      { return NameInsert }
func (ReplaceRequest) Command() Name     { return NameReplace }
func (PassRequest) Command() Name        { return NamePass }
func (ListRequest) Command() Name        { return NameList }
func (ShowRequest) Command() Name        { return NameShow }
func (ReadRequest) Command() Name        { return NameRead }
func (StatusRequest) Command() Name      { return NameStatus }
func (InfoRequest) Command() Name        { return NameInfo }
func (TeamInfoRequest) Command() Name    { return NameTeamInfo }
func (SetRequest) Command() Name         { return NameSet }
func (PublishRequest) Command() Name     { return NamePublish }
func (LogMessageRequest) Command() Name  { return NameLogMessage }
func (HelpRequest) Command() Name        { return NameHelp }

func (AddPlayerRequest) isRequest()   {}
func (AddDirectorRequest) isRequest() {}
func (AddTeamRequest) isRequest()     {}
func (StartRequest) isRequest()       {}
func (DoneRequest) isRequest()        {}
func (EndRequest) isRequest()         {}
func (FindRequest) isRequest()        {}
func (DrawRequest) isRequest()        {}
func (DiscardRequest) isRequest()     {}
func (PlayRequest) isRequest()        {}
func (PlayTypeRequest) isRequest()    {}
func (InsertRequest) isRequest()      {}
func (ReplaceRequest) isRequest()     {}
func (PassRequest) isRequest()        {}
func (ListRequest) isRequest()        {}
func (ShowRequest) isRequest()        {}
func (ReadRequest) isRequest()        {}
func (StatusRequest) isRequest()      {}
func (InfoRequest) isRequest()        {}
func (TeamInfoRequest) isRequest()    {}
func (SetRequest) isRequest()         {}
func (PublishRequest) isRequest()     {}
func (LogMessageRequest) isRequest()  {}
func (HelpRequest) isRequest()        {}

// textRequest is a request that keeps its free text verbatim.
type textRequest interface {
	withText(text string) Request
}

func (r PlayRequest) withText(text string) Request       { r.Text = text; return r }
func (r PlayTypeRequest) withText(text string) Request   { r.Text = text; return r }
func (r LogMessageRequest) withText(text string) Request { r.Text = text; return r }
