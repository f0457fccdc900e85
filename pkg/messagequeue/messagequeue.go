package messagequeue

// MessageQueue defines the publish-side interface for message queue services.
// Auth events are consumed by downstream services, not by this application.
type MessageQueue interface {
	Publish(queueName string, body []byte) error
	Close() error
}
