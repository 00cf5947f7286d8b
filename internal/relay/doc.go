// Package relay forwards dispatched file events to message brokers as JSON.
//
// NATSSubscriber publishes on a subject through anything with a
// Publish(subject, data) method, such as *nats.Conn. KafkaSubscriber produces
// synchronously through a *kgo.Client, keyed by process id so that events of
// one process stay ordered within a partition.
package relay
