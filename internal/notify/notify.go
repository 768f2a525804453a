package notify

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Event is what the notification collaborator consumes from Kafka; websocket
// delivery happens over there, not here.
type Event struct {
	Kind      string    `json:"kind"`
	ActorID   int64     `json:"actor_id"`
	UserID    int64     `json:"user_id"`
	BabbleID  int64     `json:"babble_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	KindBabbleCreated = "babble.created"
	KindLiked         = "babble.liked"
	KindRebabbled     = "babble.rebabbled"
	KindCommented     = "babble.commented"
	KindFollowed      = "user.followed"
)

// Sink is the producer side; pkg/kafka implements it.
type Sink interface {
	Publish(ctx context.Context, key string, message []byte) error
}

// Publisher emits events fire-and-forget: a broker outage is logged and the
// request proceeds.
type Publisher struct {
	sink Sink
	log  *zap.Logger
}

func NewPublisher(sink Sink, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{sink: sink, log: log}
}

func (p *Publisher) Emit(ctx context.Context, ev Event) {
	if p.sink == nil {
		return
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := p.sink.Publish(ctx, ev.Kind, b); err != nil {
		p.log.Warn("notify publish", zap.String("kind", ev.Kind), zap.Error(err))
	}
}
