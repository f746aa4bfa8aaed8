package mq

import (
	"sync/atomic"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/ajitpratap0/chronodb-go/pkg/block"
	"github.com/ajitpratap0/chronodb-go/pkg/compression"
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
	"github.com/ajitpratap0/chronodb-go/pkg/logger"
)

// Producer publishes blocks and metadata as compressed envelope frames.
type Producer struct {
	config Config
	log    *zap.Logger
	comp   compression.Compressor

	client   sarama.Client
	producer sarama.SyncProducer

	running int32
}

// NewProducer creates a producer for the given configuration.
func NewProducer(config Config) (*Producer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	comp, err := compression.New(config.Codec())
	if err != nil {
		return nil, err
	}
	return &Producer{
		config: config,
		log:    logger.With(zap.String("component", "mq_producer")),
		comp:   comp,
	}, nil
}

// Connect establishes the broker connection.
func (p *Producer) Connect() error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return errors.New(errors.ErrorTypeInternal, "producer is already connected")
	}

	var err error
	p.client, err = sarama.NewClient(p.config.Brokers, p.config.saramaConfig())
	if err != nil {
		atomic.StoreInt32(&p.running, 0)
		return errors.Wrap(err, errors.ErrorTypeConnection, "creating broker client")
	}
	p.producer, err = sarama.NewSyncProducerFromClient(p.client)
	if err != nil {
		p.client.Close()
		atomic.StoreInt32(&p.running, 0)
		return errors.Wrap(err, errors.ErrorTypeConnection, "creating producer")
	}

	p.log.Info("connected to broker",
		zap.Strings("brokers", p.config.Brokers),
		zap.String("compression", p.comp.Codec().String()))
	return nil
}

// PublishBlock publishes one block to the topic. key selects the partition;
// an empty key lets the broker balance.
func (p *Producer) PublishBlock(topic, key string, b *block.Block) error {
	if atomic.LoadInt32(&p.running) == 0 {
		return errors.New(errors.ErrorTypeConnection, "producer is not connected")
	}
	msg, err := NewBlockMessage(topic, key, b, p.comp)
	if err != nil {
		return err
	}
	return p.send(msg)
}

// PublishMeta publishes one metadata record to the topic.
func (p *Producer) PublishMeta(topic, key string, meta *Meta) error {
	if atomic.LoadInt32(&p.running) == 0 {
		return errors.New(errors.ErrorTypeConnection, "producer is not connected")
	}
	msg, err := NewMetaMessage(topic, key, meta, p.comp)
	if err != nil {
		return err
	}
	return p.send(msg)
}

func (p *Producer) send(msg *sarama.ProducerMessage) error {
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "sending message")
	}
	p.log.Debug("published message",
		zap.String("topic", msg.Topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close releases the broker connections.
func (p *Producer) Close() error {
	if !atomic.CompareAndSwapInt32(&p.running, 1, 0) {
		return errors.New(errors.ErrorTypeInternal, "producer is not running")
	}
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			p.log.Error("failed to close producer", zap.Error(err))
		}
	}
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			p.log.Error("failed to close broker client", zap.Error(err))
		}
	}
	p.log.Info("producer closed")
	return nil
}
