package worker

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"commande-service/internal/events"
)

// Notifier drains the commandes queue and logs every order event. It stands
// in for downstream consumers (mail, analytics) that react to mutations.
type Notifier struct {
	Log zerolog.Logger
}

func (n *Notifier) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	n.Log.Info().Msg("notifier consumer started")
	for {
		select {
		case <-ctx.Done():
			n.Log.Info().Msg("notifier consumer stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				n.Log.Info().Msg("deliveries closed")
				return
			}
			n.Handle(d)
		}
	}
}

// Handle acks well-formed envelopes and rejects the rest to the DLQ without
// requeueing; a broken message never cycles.
func (n *Notifier) Handle(d amqp.Delivery) {
	var env events.Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		n.Log.Error().Err(err).Str("rk", d.RoutingKey).Msg("bad json -> dlq")
		_ = d.Nack(false, false)
		return
	}
	if env.Evenement == "" || env.Commande.ID == "" {
		n.Log.Error().Str("rk", d.RoutingKey).Msg("missing evenement/commande id -> dlq")
		_ = d.Nack(false, false)
		return
	}

	n.Log.Info().
		Str("evenement", env.Evenement).
		Str("commande_id", env.Commande.ID).
		Str("client_id", env.Commande.ClientID).
		Str("date", env.Date).
		Msg("commande event received")
	_ = d.Ack(false)
}
