package reply

import (
	"context"
	"fmt"

	"github.com/chatforge/wagateway/internal/domain/models"
)

// Generator produces the auto-reply body for an inbound message. An empty
// reply with a nil error means "send nothing".
type Generator interface {
	Reply(ctx context.Context, message models.MessageRecord, client models.WhatsAppClient) (string, error)
}

// StaticGenerator is the placeholder implementation used until a real
// AI-backed generator is plugged in. It acknowledges the message on behalf of
// the client's bot.
type StaticGenerator struct{}

// NewStaticGenerator returns the placeholder generator.
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

// Reply returns a fixed acknowledgement, personalized with the client name
// when available.
func (g *StaticGenerator) Reply(_ context.Context, _ models.MessageRecord, client models.WhatsAppClient) (string, error) {
	name := client.ClientName
	if name == "" {
		name = client.VerifiedName
	}
	if name == "" {
		return "Thanks for your message! We'll get back to you shortly.", nil
	}
	return fmt.Sprintf("Thanks for contacting %s! We'll get back to you shortly.", name), nil
}
