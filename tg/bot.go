package tg

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// GetBot creates a telegram API instance
func GetBot(botToken string) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}

	return &Bot{API: bot}, nil
}

type Bot struct {
	API *tgbotapi.BotAPI
}

// GetUpdates long-polls telegram and forwards every plain text message to
// msgChan until the context is cancelled.
func (b *Bot) GetUpdates(ctx context.Context, msgChan chan<- UserMsg) error {
	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 60

	updates := b.API.GetUpdatesChan(updCfg)

	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil || upd.Message.Text == "" {
				continue
			}
			msgChan <- UserMsg{
				ChatID: upd.Message.Chat.ID,
				ID:     upd.Message.MessageID,
				Text:   upd.Message.Text,
			}
		}
	}
}

func (b *Bot) SendMessage(m BotMessage) (int, error) {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	if m.TextMarkdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if m.ReplyToMsgID != 0 {
		msg.ReplyToMessageID = m.ReplyToMsgID
	}

	sentMsg, err := b.API.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("API.Send: %w", err)
	}

	return sentMsg.MessageID, nil
}
