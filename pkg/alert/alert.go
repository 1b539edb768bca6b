// Package alert publishes a rate-anomaly event for any source IP whose
// packet count within a single worker batch crosses a configured
// threshold. It is adapted from the teacher's failure detector
// (services/self-healing/internal/detector): the same per-key state and
// threshold comparison, repurposed from per-device telemetry events to
// per-source-IP packet counts within one PCAP batch.
package alert

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/netwatch/pcapsentry/pkg/netmodel"
)

// Event describes one source IP that crossed the rate threshold within a
// single batch.
type Event struct {
	SourceIP  string    `json:"source_ip"`
	Count     int       `json:"count"`
	Threshold int       `json:"threshold"`
	At        time.Time `json:"at"`
}

// Publisher checks batches against a rate threshold and publishes Events to
// an AMQP exchange.
type Publisher struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	exchange  string
	threshold int
	logger    *zap.Logger
}

// New dials amqpURL, declares exchange as a fanout exchange, and returns a
// Publisher enforcing threshold packets-per-batch per source IP.
func New(amqpURL, exchange string, threshold int, logger *zap.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, channel: ch, exchange: exchange, threshold: threshold, logger: logger}, nil
}

// Close releases the AMQP channel and connection.
func (p *Publisher) Close() {
	p.channel.Close()
	p.conn.Close()
}

// CheckBatch counts source-IP occurrences within batch and publishes one
// Event per IP at or above the configured threshold. It satisfies
// pkg/aggregate.AlertSink.
func (p *Publisher) CheckBatch(batch []netmodel.PacketRecord) error {
	counts := make(map[string]int, len(batch))
	for _, rec := range batch {
		counts[rec.SourceIP]++
	}

	var firstErr error
	for ip, count := range counts {
		if count < p.threshold {
			continue
		}
		if err := p.publish(Event{SourceIP: ip, Count: count, Threshold: p.threshold, At: time.Now()}); err != nil {
			p.logger.Error("failed to publish alert event", zap.String("source_ip", ip), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *Publisher) publish(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal alert event: %w", err)
	}

	return p.channel.Publish(p.exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
}
