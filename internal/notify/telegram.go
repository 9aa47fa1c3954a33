package notify

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"boathouse/internal/models"
)

// Notifier sends defect alerts to the club's Telegram chat. A nil Notifier
// is valid and does nothing, so callers never need to guard the optional
// feature.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewNotifier creates a Telegram notifier. An empty token disables alerts.
func NewNotifier(token string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Defect alerts enabled", zap.String("bot_username", api.Self.UserName))
	return &Notifier{api: api, chatID: chatID, logger: logger}, nil
}

// DefectsReported announces newly reported defects after a check-in.
// Failures are logged and swallowed; an alert must never block a check-in.
func (n *Notifier) DefectsReported(boatName string, defects *models.DefectsForBoat) {
	if n == nil || defects == nil || !defects.HasDefects() {
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Defects reported on %s:\n", boatName)
	for _, report := range defects.Reported {
		fmt.Fprintf(&text, "- %s", report.Type.Name)
		if report.AdditionalInfo != "" {
			fmt.Fprintf(&text, " (%s)", report.AdditionalInfo)
		}
		text.WriteString("\n")
	}

	msg := tgbotapi.NewMessage(n.chatID, text.String())
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Error("Failed to send defect alert", zap.String("boat", boatName), zap.Error(err))
	}
}
