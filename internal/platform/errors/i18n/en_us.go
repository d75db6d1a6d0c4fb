package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown                  = "UNKNOWN"
	CodeInvalidCommand           = "INVALID_COMMAND"
	CodeInvalidArgumentCount     = "INVALID_ARGUMENT_COUNT"
	CodeInvalidArgument          = "INVALID_ARGUMENT"
	CodeInvalidCardReference     = "INVALID_CARD_REFERENCE"
	CodeInvalidLineReference     = "INVALID_LINE_REFERENCE"
	CodeInvalidPlayer            = "INVALID_PLAYER"
	CodeUnimplementedProtocol    = "UNIMPLEMENTED_PROTOCOL"
	CodeMissingRoleHolder        = "MISSING_ROLE_HOLDER"
	CodeUnauthorizedRole         = "UNAUTHORIZED_ROLE"
	CodeTurnPreconditionViolated = "TURN_PRECONDITION_VIOLATED"
	CodeGameNotStarted           = "GAME_NOT_STARTED"
	CodeGameNotFound             = "GAME_NOT_FOUND"
	CodeUnknownGenre             = "UNKNOWN_GENRE"
	CodeDuplicatePlayer          = "DUPLICATE_PLAYER"
	CodeNotFound                 = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		CodeUnknown: "Something went wrong",

		// Command errors
		CodeInvalidCommand:        "Unknown command {{.Command}}",
		CodeInvalidArgumentCount:  "{{.Command}} takes from {{.Min}} to {{.Max}} arguments, got {{.Got}}",
		CodeInvalidArgument:       "Invalid argument {{.Argument}}",
		CodeInvalidCardReference:  "There is no card {{.Card}} to use",
		CodeInvalidLineReference:  "Story line {{.Line}} does not exist",
		CodeInvalidPlayer:         "No such player: {{.Player}}",
		CodeUnimplementedProtocol: "{{.Action}} is not available yet",

		// Role and turn errors
		CodeMissingRoleHolder:        "This game needs exactly one {{.Role}}",
		CodeUnauthorizedRole:         "Only the {{.Role}} may do that",
		CodeTurnPreconditionViolated: "Draw a card and then play or discard before ending your turn",
		CodeGameNotStarted:           "The game has not started",

		// Game lifecycle errors
		CodeGameNotFound:    "Game {{.GameID}} was not found",
		CodeUnknownGenre:    "Unknown genre {{.Genre}}",
		CodeDuplicatePlayer: "Initials {{.Initials}} are already taken",

		CodeNotFound: "Record not found",
	},
}
