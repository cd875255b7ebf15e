package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tribunal/internal/domain/analysis"
	"tribunal/internal/metrics"
	"tribunal/pkg/errors"
	"tribunal/pkg/logger"
)

// TelegramNotifier posts verdict messages to a fixed chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logger.Logger
}

// NewTelegramNotifier creates a notifier for the given bot token and chat.
func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram bot token is required")
	}
	if chatID == 0 {
		return nil, errors.Wrap(errors.ErrInvalidInput, "telegram chat id is required")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		log:    logger.Component("telegram_notifier"),
	}, nil
}

// SendMessage posts text to the configured chat. The bot API is not
// context-aware, so cancellation is only honored up front.
func (n *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := n.bot.Send(msg)
	metrics.RecordNotification("telegram", err)
	if err != nil {
		return errors.Wrap(err, "failed to send telegram message")
	}

	n.log.Debugf("Sent verdict notification to chat %d", n.chatID)
	return nil
}

// VerdictMessage renders the final outcome of a run as a Markdown message.
func VerdictMessage(ticker string, verdict analysis.Verdict, found bool) string {
	if !found {
		return fmt.Sprintf("📊 *%s* analysis finished without a verdict", ticker)
	}

	var icon string
	switch verdict {
	case analysis.VerdictStrong:
		icon = "📈"
	case analysis.VerdictPoor:
		icon = "📉"
	default:
		icon = "📊"
	}

	return fmt.Sprintf("%s *%s* FINAL VERDICT: %s performance", icon, ticker, verdict)
}
