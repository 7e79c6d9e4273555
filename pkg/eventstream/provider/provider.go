// Package provider selects an eventstream publisher backend by name.
package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/ssecodec/pkg/eventstream"
	"github.com/papercomputeco/ssecodec/pkg/eventstream/kafka"
	"github.com/papercomputeco/ssecodec/pkg/eventstream/nop"
	"github.com/papercomputeco/ssecodec/pkg/eventstream/sqlite"
)

const (
	Nop    = "nop"
	Kafka  = "kafka"
	SQLite = "sqlite"
)

// Options selects and configures a publisher backend.
type Options struct {
	// Provider is one of Nop, Kafka, or SQLite. Empty means Nop.
	Provider string

	// Brokers is a comma separated list of Kafka bootstrap brokers.
	Brokers string
	Topic   string

	// WriteTimeout bounds a single Kafka write.
	WriteTimeout time.Duration

	SQLitePath string
}

// NewPublisher builds the publisher named by opts.Provider.
func NewPublisher(opts Options) (eventstream.Publisher, error) {
	switch opts.Provider {
	case "", Nop:
		return nop.NewPublisher(), nil
	case Kafka:
		return kafka.NewPublisher(kafka.Config{
			Brokers:      splitBrokers(opts.Brokers),
			Topic:        opts.Topic,
			WriteTimeout: opts.WriteTimeout,
		})
	case SQLite:
		return sqlite.NewPublisher(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", eventstream.ErrUnknownProvider, opts.Provider)
	}
}

func splitBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
