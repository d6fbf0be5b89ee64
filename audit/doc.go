// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit publishes election events (activations, ballots, resets,
deletions) to an external record.

LogPublisher writes them to the structured log. KafkaPublisher produces
them to a topic when KAFKA_BROKERS is set:

	pub, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
*/
package audit
