package kafka

// NewPublisherWithWriter exposes the writer seam to tests.
var NewPublisherWithWriter = func(w messageWriter, topic string) *Publisher {
	return newPublisher(w, topic)
}
