package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	apierrors "github.com/diogo/foldchat/internal/errors"
	"github.com/diogo/foldchat/internal/models"
)

// Sender delivers a conversation to one provider
type Sender interface {
	Provider() models.Provider
	Send(ctx context.Context, history []models.Message, model models.Model) (models.Message, error)
}

// MessageSender is what the interaction surface needs from the gateway
type MessageSender interface {
	SendMessage(ctx context.Context, history []models.Message, modelID string) (models.Message, error)
}

// Gateway routes a conversation to the sender registered for the model's
// provider. Calls are not retried.
type Gateway struct {
	senders map[models.Provider]Sender
	log     zerolog.Logger
}

var _ MessageSender = (*Gateway)(nil)

// NewGateway creates a gateway over the given senders
func NewGateway(log zerolog.Logger, senders ...Sender) *Gateway {
	g := &Gateway{
		senders: make(map[models.Provider]Sender, len(senders)),
		log:     log.With().Str("component", "gateway").Logger(),
	}
	for _, s := range senders {
		g.senders[s.Provider()] = s
	}
	return g
}

// SendMessage sends history to the provider serving modelID and returns the
// assistant reply. Unknown models fail before any network call.
func (g *Gateway) SendMessage(ctx context.Context, history []models.Message, modelID string) (models.Message, error) {
	if len(history) == 0 {
		return models.Message{}, apierrors.NewValidationError("messages", "conversation is empty")
	}

	model, ok := models.FindModel(modelID)
	if !ok {
		return models.Message{}, apierrors.NewUnknownModelError(modelID)
	}

	sender, ok := g.senders[model.Provider]
	if !ok {
		return models.Message{}, apierrors.NewUnknownModelError(modelID + " (provider " + string(model.Provider) + " not configured)")
	}

	start := time.Now()
	reply, err := sender.Send(ctx, history, model)

	ev := g.log.Debug()
	if err != nil {
		ev = g.log.Warn().Err(err).Int("status", apierrors.GetHTTPStatus(err))
	}
	ev.Str("provider", string(model.Provider)).
		Str("model", model.ID).
		Int("messages", len(history)).
		Dur("elapsed", time.Since(start)).
		Msg("Provider call finished")

	return reply, err
}
