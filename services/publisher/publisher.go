package publisher

// Publisher hands successful price observations to downstream consumers
type Publisher interface {
	// Publish publishes one observation message under an entity key
	Publish(key string, message []byte) error

	// Close closes the publisher connection
	Close() error
}

// NopPublisher discards observations, for runs without a stream configured
type NopPublisher struct{}

// NewNopPublisher creates a publisher that drops everything
func NewNopPublisher() *NopPublisher {
	return &NopPublisher{}
}

// Publish drops the message
func (p *NopPublisher) Publish(string, []byte) error {
	return nil
}

// Close closes the publisher
func (p *NopPublisher) Close() error {
	return nil
}
