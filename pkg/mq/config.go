package mq

import (
	"crypto/tls"
	"time"

	"github.com/IBM/sarama"

	"github.com/ajitpratap0/chronodb-go/pkg/compression"
	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// Config contains broker transport configuration.
type Config struct {
	Brokers []string `yaml:"brokers" json:"brokers"`

	// Consumer settings
	GroupID             string `yaml:"group_id" json:"group_id"`
	OffsetReset         string `yaml:"offset_reset" json:"offset_reset"` // earliest, latest
	SessionTimeoutMS    int    `yaml:"session_timeout_ms" json:"session_timeout_ms"`
	HeartbeatIntervalMS int    `yaml:"heartbeat_interval_ms" json:"heartbeat_interval_ms"`

	// Producer settings
	ProducerAcks    string `yaml:"producer_acks" json:"producer_acks"` // all, 1, 0
	ProducerRetries int    `yaml:"producer_retries" json:"producer_retries"`

	// Payload compression applied to envelope frames before publishing.
	Compression string `yaml:"compression" json:"compression"` // none, lz4, s2, zstd

	// Security settings
	SASLMechanism         string `yaml:"sasl_mechanism" json:"sasl_mechanism"`
	SASLUsername          string `yaml:"sasl_username" json:"sasl_username"`
	SASLPassword          string `yaml:"sasl_password" json:"sasl_password"`
	EnableTLS             bool   `yaml:"enable_tls" json:"enable_tls"`
	TLSInsecureSkipVerify bool   `yaml:"tls_insecure_skip_verify" json:"tls_insecure_skip_verify"`
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New(errors.ErrorTypeConfig, "at least one broker is required")
	}
	switch c.OffsetReset {
	case "", "earliest", "latest":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "invalid offset_reset %q", c.OffsetReset)
	}
	switch c.ProducerAcks {
	case "", "all", "-1", "1", "0":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "invalid producer_acks %q", c.ProducerAcks)
	}
	if _, err := compression.ParseCodec(c.Compression); err != nil {
		return err
	}
	return nil
}

// Codec returns the configured payload compression codec.
func (c *Config) Codec() compression.Codec {
	codec, err := compression.ParseCodec(c.Compression)
	if err != nil {
		return compression.CodecNone
	}
	return codec
}

// saramaConfig builds the client configuration shared by producer and
// consumer sides.
func (c *Config) saramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()

	switch c.ProducerAcks {
	case "1":
		cfg.Producer.RequiredAcks = sarama.WaitForLocal
	case "0":
		cfg.Producer.RequiredAcks = sarama.NoResponse
	default:
		cfg.Producer.RequiredAcks = sarama.WaitForAll
	}
	cfg.Producer.Retry.Max = c.ProducerRetries
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	switch c.OffsetReset {
	case "earliest":
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRoundRobin
	if c.SessionTimeoutMS > 0 {
		cfg.Consumer.Group.Session.Timeout = time.Duration(c.SessionTimeoutMS) * time.Millisecond
	}
	if c.HeartbeatIntervalMS > 0 {
		cfg.Consumer.Group.Heartbeat.Interval = time.Duration(c.HeartbeatIntervalMS) * time.Millisecond
	}

	if c.EnableTLS {
		cfg.Net.TLS.Enable = true
		cfg.Net.TLS.Config = &tls.Config{
			InsecureSkipVerify: c.TLSInsecureSkipVerify,
		}
	}
	if c.SASLMechanism != "" {
		cfg.Net.SASL.Enable = true
		cfg.Net.SASL.User = c.SASLUsername
		cfg.Net.SASL.Password = c.SASLPassword
		switch c.SASLMechanism {
		case "SCRAM-SHA-256":
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		case "SCRAM-SHA-512":
			cfg.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA512
		default:
			cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		}
	}

	return cfg
}
