package events

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"commande-service/internal/models"
)

// Event types, wire values of the envelope's "evenement" field.
const (
	TypeCree     = "cree"
	TypeModifie  = "modifie"
	TypeSupprime = "supprime"
)

const (
	source  = "service-commande"
	version = "1.0.0"
)

// PendingEvent is staged by a lifecycle handler after a successful mutation
// and consumed exactly once by the publish middleware within the same
// request.
type PendingEvent struct {
	Type     string
	Commande models.Commande
	At       time.Time
}

type Metadata struct {
	Timestamp int64  `json:"timestamp"`
	Source    string `json:"source"`
	Version   string `json:"version"`
}

// Envelope is the message published to the commandes exchange.
type Envelope struct {
	Evenement string          `json:"evenement"`
	Commande  models.Commande `json:"commande"`
	Date      string          `json:"date"`
	Metadata  Metadata        `json:"metadata"`
}

func NewEnvelope(evt PendingEvent) Envelope {
	return Envelope{
		Evenement: evt.Type,
		Commande:  evt.Commande,
		Date:      evt.At.UTC().Format(time.RFC3339),
		Metadata: Metadata{
			Timestamp: evt.At.UnixMilli(),
			Source:    source,
			Version:   version,
		},
	}
}

// holder is the request-scoped slot the middleware injects. take clears it so
// a staged event is published at most once.
type holder struct{ evt *PendingEvent }

func (h *holder) take() *PendingEvent {
	evt := h.evt
	h.evt = nil
	return evt
}

type holderKey struct{}

// Stage records a pending event for the current request. Outside the publish
// middleware (unit tests, internal callers) it is a no-op.
func Stage(ctx context.Context, eventType string, c models.Commande) {
	if h, ok := ctx.Value(holderKey{}).(*holder); ok {
		h.evt = &PendingEvent{Type: eventType, Commande: c, At: time.Now()}
	}
}

// Broker is the single-attempt publish seam, satisfied by rabbit.Publisher.
type Broker interface {
	PublishJSON(ctx context.Context, routingKey string, v any, headers amqp.Table) error
}

// Middleware runs the handler, then publishes whatever the handler staged.
// The publish is detached from the request goroutine: the response completes
// immediately and a slow or dead broker never adds to client-facing latency.
// A broker fault can only ever be logged: the error kind and message, never
// the order payload.
func Middleware(pub Broker, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := &holder{}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), holderKey{}, h)))

			if evt := h.take(); evt != nil {
				go publish(pub, log, *evt)
			}
		})
	}
}

// publish makes the single delivery attempt on its own deadline; the request
// context is already gone by the time it runs.
func publish(pub Broker, log zerolog.Logger, evt PendingEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := pub.PublishJSON(ctx, "commande."+evt.Type, NewEnvelope(evt), amqp.Table{
		"x-event-id": uuid.NewString(),
	})
	if err != nil {
		publishErrorsTotal.Inc()
		log.Error().
			Str("err_kind", fmt.Sprintf("%T", err)).
			Str("err", err.Error()).
			Str("evenement", evt.Type).
			Str("commande_id", evt.Commande.ID).
			Msg("event publish failed")
		return
	}
	publishedTotal.WithLabelValues(evt.Type).Inc()
	log.Debug().Str("evenement", evt.Type).Str("commande_id", evt.Commande.ID).Msg("event published")
}
