package kafka

import (
	"context"
	"strings"
	"time"

	kgo "github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kgo.Writer
}

func NewProducer(bootstrapServers, topic string) *Producer {
	return &Producer{
		writer: &kgo.Writer{
			Addr:         kgo.TCP(strings.Split(bootstrapServers, ",")...),
			Topic:        topic,
			Balancer:     &kgo.LeastBytes{},
			RequiredAcks: kgo.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, key string, message []byte) error {
	return p.writer.WriteMessages(ctx, kgo.Message{
		Key:   []byte(key),
		Value: message,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
