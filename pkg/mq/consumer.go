package mq

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
	"github.com/ajitpratap0/chronodb-go/pkg/logger"
)

// Handler processes one decoded broker message. Returning an error leaves
// the message unmarked so it is redelivered after a rebalance.
type Handler func(ctx context.Context, msg *Message) error

// Consumer subscribes to block topics and feeds decoded messages to a
// handler. It wraps a broker consumer group; offsets are committed only for
// messages the handler accepted.
type Consumer struct {
	config  Config
	log     *zap.Logger
	decoder *Decoder

	client sarama.Client
	group  sarama.ConsumerGroup

	topics  []string
	handler Handler

	running int32
	stopCh  chan struct{}
}

// NewConsumer creates a consumer for the given configuration.
func NewConsumer(config Config) (*Consumer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.GroupID == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "consumer group_id is required")
	}
	return &Consumer{
		config:  config,
		log:     logger.With(zap.String("component", "mq_consumer")),
		decoder: NewDecoder(),
		stopCh:  make(chan struct{}),
	}, nil
}

// Subscribe connects to the broker and starts consuming the topics. The
// handler runs on the consumer group's session goroutines.
func (c *Consumer) Subscribe(topics []string, handler Handler) error {
	if !atomic.CompareAndSwapInt32(&c.running, 0, 1) {
		return errors.New(errors.ErrorTypeInternal, "consumer is already running")
	}

	c.topics = topics
	c.handler = handler

	var err error
	c.client, err = sarama.NewClient(c.config.Brokers, c.config.saramaConfig())
	if err != nil {
		atomic.StoreInt32(&c.running, 0)
		return errors.Wrap(err, errors.ErrorTypeConnection, "creating broker client")
	}
	c.group, err = sarama.NewConsumerGroupFromClient(c.config.GroupID, c.client)
	if err != nil {
		c.client.Close()
		atomic.StoreInt32(&c.running, 0)
		return errors.Wrap(err, errors.ErrorTypeConnection, "creating consumer group")
	}

	go c.consume()

	c.log.Info("subscribed to topics",
		zap.Strings("topics", topics),
		zap.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) consume() {
	ctx := context.Background()
	for {
		select {
		case <-c.stopCh:
			return
		default:
			if err := c.group.Consume(ctx, c.topics, c); err != nil {
				c.log.Error("consumer group error", zap.Error(err))
				time.Sleep(time.Second)
			}
		}
	}
}

// Setup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup implements sarama.ConsumerGroupHandler.
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim implements sarama.ConsumerGroupHandler.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case raw := <-claim.Messages():
			if raw == nil {
				return nil
			}
			if err := c.processMessage(session, raw); err != nil {
				c.log.Error("failed to process message",
					zap.String("topic", raw.Topic),
					zap.Int32("partition", raw.Partition),
					zap.Int64("offset", raw.Offset),
					zap.Error(err))
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) processMessage(session sarama.ConsumerGroupSession, raw *sarama.ConsumerMessage) error {
	msg, err := c.decoder.Decode(raw)
	if err != nil {
		return err
	}
	if err := c.handler(session.Context(), msg); err != nil {
		return err
	}
	session.MarkMessage(raw, "")

	c.log.Debug("processed message",
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset),
		zap.String("kind", msg.Kind.String()))
	return nil
}

// Close stops consumption and releases the broker connections.
func (c *Consumer) Close() error {
	if !atomic.CompareAndSwapInt32(&c.running, 1, 0) {
		return errors.New(errors.ErrorTypeInternal, "consumer is not running")
	}
	close(c.stopCh)

	if c.group != nil {
		if err := c.group.Close(); err != nil {
			c.log.Error("failed to close consumer group", zap.Error(err))
		}
	}
	if c.client != nil {
		if err := c.client.Close(); err != nil {
			c.log.Error("failed to close broker client", zap.Error(err))
		}
	}
	c.log.Info("consumer closed")
	return nil
}
