package tg

// UserMsg is a plain user text message
type UserMsg struct {
	ChatID int64
	ID     int
	Text   string
}

// BotMessage is an outgoing bot message
type BotMessage struct {
	ChatID       int64
	ReplyToMsgID int
	Text         string
	TextMarkdown bool
}
