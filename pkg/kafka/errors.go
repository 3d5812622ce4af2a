package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	// ErrEmptyKey is returned for messages without a partition key. Events
	// of one reservation must share a partition to stay ordered.
	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")
)
