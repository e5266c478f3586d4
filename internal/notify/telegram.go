package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tourbill/internal/config"
	"tourbill/internal/models"
)

// Sender is the slice of the Telegram bot API the notifier needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier pushes cancellation notices to the manager chats.
type TelegramNotifier struct {
	sender Sender
	chats  []int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{sender: bot, chats: cfg.ManagerChats, logger: logger}, nil
}

// NewTelegramNotifierWithSender wires an existing sender, used in tests.
func NewTelegramNotifierWithSender(sender Sender, chats []int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chats: chats, logger: logger}
}

func (n *TelegramNotifier) NotifyCancellation(ctx context.Context, booking *models.Booking, reason string) error {
	text := fmt.Sprintf("Booking %s cancelled", booking.Reference)
	if lead := booking.LeadTraveler(); lead != nil {
		text += fmt.Sprintf("\nLead traveler: %s", lead.Name)
	}
	if reason != "" {
		text += fmt.Sprintf("\nReason: %s", reason)
	}

	var lastErr error
	for _, chat := range n.chats {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := n.sender.Send(tgbotapi.NewMessage(chat, text)); err != nil {
			n.logger.Error().Err(err).Int64("chat_id", chat).Msg("Failed to send cancellation notice")
			lastErr = err
		}
	}
	return lastErr
}
