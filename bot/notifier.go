package bot

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"hrms-console/internal/services"
)

var _ services.Notifier = (*Notifier)(nil)

// Notifier posts mutation outcomes to the admin chat. It implements services.Notifier.
type Notifier struct {
	out    sender
	chatID int64
}

// NewNotifier creates a notifier for chatID
func NewNotifier(out sender, chatID int64) *Notifier {
	return &Notifier{out: out, chatID: chatID}
}

func (n *Notifier) Success(message string) {
	n.send("✅ " + message)
}

func (n *Notifier) Failure(message string) {
	n.send("❌ " + message)
}

func (n *Notifier) send(text string) {
	if n == nil || n.out == nil || n.chatID == 0 {
		return
	}
	if _, err := n.out.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		log.Printf("Failed to send: %v", err)
	}
}
