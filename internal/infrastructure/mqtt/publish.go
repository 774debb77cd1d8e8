package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/m-adamski/timeseries-data-provider/internal/series"
)

// Maximum payload size for MQTT messages (1MB).
const maxPayloadSize = 1 << 20

// SamplePayload is the JSON body published for each ingested sample.
type SamplePayload struct {
	Source    string  `json:"source"`
	Value     float64 `json:"value"`
	Timestamp string  `json:"timestamp"`
}

// Publish sends a message to topic and waits for the broker acknowledgment.
//
// QoS Levels:
//   - 0: At most once (fire and forget)
//   - 1: At least once (guaranteed delivery, may duplicate)
//   - 2: Exactly once (guaranteed, no duplicates, higher overhead)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if !validPublishTopic(topic) {
		return fmt.Errorf("%w: %q", ErrInvalidTopic, topic)
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishSample publishes a stored sample on <prefix>/samples/<source>
// with the configured QoS. Samples are not retained.
func (c *Client) PublishSample(ctx context.Context, s series.Sample) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	payload, err := encodeSample(s)
	if err != nil {
		return err
	}
	return c.Publish(c.topics.Sample(s.Measurement), payload, byte(c.cfg.QoS), false)
}

// encodeSample renders the JSON payload for a sample.
func encodeSample(s series.Sample) ([]byte, error) {
	payload, err := json.Marshal(SamplePayload{
		Source:    s.Measurement,
		Value:     s.Value,
		Timestamp: s.Timestamp.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding sample: %w", ErrPublishFailed, err)
	}
	return payload, nil
}
