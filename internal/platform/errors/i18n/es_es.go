package i18n

var esESCatalog = &Catalog{
	locale: "es-ES",
	messages: map[Code]string{
		CodeUnknown: "Algo salió mal",

		CodeInvalidCommand:        "Comando desconocido {{.Command}}",
		CodeInvalidArgumentCount:  "{{.Command}} acepta de {{.Min}} a {{.Max}} argumentos, recibió {{.Got}}",
		CodeInvalidArgument:       "Argumento inválido {{.Argument}}",
		CodeInvalidCardReference:  "No hay ninguna carta {{.Card}}",
		CodeInvalidLineReference:  "La línea {{.Line}} no existe en la historia",
		CodeInvalidPlayer:         "No existe el jugador {{.Player}}",
		CodeUnimplementedProtocol: "{{.Action}} todavía no está disponible",

		CodeMissingRoleHolder:        "La partida necesita exactamente un {{.Role}}",
		CodeUnauthorizedRole:         "Solo el {{.Role}} puede hacer eso",
		CodeTurnPreconditionViolated: "Roba una carta y luego juega o descarta antes de terminar tu turno",
		CodeGameNotStarted:           "La partida no ha comenzado",

		CodeGameNotFound:    "No se encontró la partida {{.GameID}}",
		CodeUnknownGenre:    "Género desconocido {{.Genre}}",
		CodeDuplicatePlayer: "Las iniciales {{.Initials}} ya están en uso",

		CodeNotFound: "Registro no encontrado",
	},
}
