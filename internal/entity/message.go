package entity

// Parse modes understood by the chat transport
const (
	ParseModeMarkdown = "Markdown"
	ParseModeHTML     = "HTML"
)

// OutgoingMessage is a transport-neutral chat message.
// Markup carries a transport keyboard and may be nil.
type OutgoingMessage struct {
	ChatID    int64
	Text      string
	ParseMode string
	Markup    any
}
