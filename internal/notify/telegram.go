// Package notify pushes short operational messages to the owner's Telegram
// chat. Send-only: the bot never reads updates.
package notify

import (
	"encoding/json"
	"fmt"

	"balneario/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// sender is the slice of the Telegram API the notifier needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    sender
	chatID int64
	logger zerolog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return newWithSender(bot, chatID, logger), nil
}

func newWithSender(bot sender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Notify sends one plain-text message to the configured chat.
func (n *TelegramNotifier) Notify(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// SubscribeAll wires the notifier to booking and payment events. Delivery
// failures are logged and swallowed so a Telegram outage never blocks a
// booking.
func (n *TelegramNotifier) SubscribeAll(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationCreated, n.onReservation("Новая бронь"))
	bus.Subscribe(events.EventReservationUpdated, n.onReservation("Бронь изменена"))
	bus.Subscribe(events.EventReservationCancelled, n.onReservation("Бронь отменена"))
	bus.Subscribe(events.EventPaymentRecorded, n.onPayment)
}

func (n *TelegramNotifier) onReservation(title string) events.EventHandler {
	return func(event *events.Event) error {
		var p events.ReservationEventPayload
		if err := json.Unmarshal(event.Payload, &p); err != nil {
			n.logger.Error().Err(err).Str("event", event.Type).Msg("decode payload")
			return nil
		}

		text := fmt.Sprintf("%s: №%d %s, место %d\n%s - %s\n%s",
			title, p.GroupID, p.ServiceType, p.UnitNumber, p.StartDate, p.EndDate, p.CustomerName)
		if err := n.Notify(text); err != nil {
			n.logger.Error().Err(err).Str("event", event.Type).Msg("notify failed")
		}
		return nil
	}
}

func (n *TelegramNotifier) onPayment(event *events.Event) error {
	var p events.PaymentEventPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("decode payload")
		return nil
	}

	text := fmt.Sprintf("Оплата: %.2f (%s) по брони №%d, дата %s",
		p.Amount, p.Method, p.GroupID, p.PaymentDate)
	if err := n.Notify(text); err != nil {
		n.logger.Error().Err(err).Str("event", event.Type).Msg("notify failed")
	}
	return nil
}
