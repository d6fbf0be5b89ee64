// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the quickly-elect API server.

quickly-elect runs school elections: sessions hold positions, positions
hold candidates, and registered voters cast one ballot per position they
are eligible for. Single-choice positions take one candidate; dual-choice
positions take two distinct candidates who are credited equally.

# Starting the Server

	DATABASE_URL=file:election.db ADMIN_USERNAME=admin \
	ADMIN_PASSWORD_HASH='$2a$10$...' ADMIN_TOKEN_SECRET=... \
	IP_HASH_SALT=... go run .

Or with PostgreSQL:

	go run . -t postgres -d "postgres://..."

See package cliparse for every setting.

# Optional Collaborators

  - REDIS_URL: voter passes in Redis instead of process memory
  - KAFKA_BROKERS: audit events to Kafka instead of the log
  - IMAGE_STORE_URL: candidate and voter photo hosting

# Architecture

  - election: verification gate, eligibility, ballot casting, tallies, resets
  - store: SQL persistence for sessions, positions, candidates, voters, ballots
  - voterpass: short-lived voter tokens (memory or Redis)
  - audit: event stream (log or Kafka)
  - handlers, router, middleware: HTTP surface using Go 1.22+ routing
  - auth: ids, voter codes, student ids, admin tokens
  - db: connections, schema, driver error classification
  - metrics: Prometheus collectors
  - imagestore: photo hosting client
  - apperr: error kinds shared by every layer
  - cliparse: configuration parsing

The server, the in-memory pass sweeper and signal-driven shutdown run under
one errgroup.
*/
package main
