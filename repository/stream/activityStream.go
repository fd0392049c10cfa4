package stream

import (
	"context"
	"strconv"
	"time"

	"kitabu/model"

	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
)

// Publisher ships committed activity log entries to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, l model.ActivityLog) error
	Close() error
}

type kafkaPublisher struct {
	w *kafka.Writer
}

func NewKafka(brokers []string, topic string) Publisher {
	return &kafkaPublisher{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}
}

func (p *kafkaPublisher) Publish(ctx context.Context, l model.ActivityLog) error {
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(l)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key(l)),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

func (p *kafkaPublisher) Close() error { return p.w.Close() }

func key(l model.ActivityLog) string {
	if l.UserID == nil {
		return "system"
	}
	return strconv.FormatInt(*l.UserID, 10)
}

type noop struct{}

func Noop() Publisher { return noop{} }

func (noop) Publish(context.Context, model.ActivityLog) error { return nil }
func (noop) Close() error                                      { return nil }
