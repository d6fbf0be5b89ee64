// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file in the working directory is loaded first when present.
Variables already set in the environment are not overridden by it.

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type (sqlite or postgres)
	-redis          Redis URL for voter passes
	-kafka          Comma-separated Kafka brokers for audit events
	-token-secret   Admin token signing secret
	-ip-salt        IP hash salt
	-student-prefix Student ID prefix
	-pass-ttl       Voter pass inactivity timeout
	-live-counts    Show live vote counts to voters

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p (default 3318)
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t (default sqlite)
	REDIS_URL          → -redis
	KAFKA_BROKERS      → -kafka
	ADMIN_TOKEN_SECRET → -token-secret
	IP_HASH_SALT       → -ip-salt
	STUDENT_ID_PREFIX  → -student-prefix (default AA)
	VOTER_PASS_TTL     → -pass-ttl (default 10m)
	SHOW_LIVE_COUNTS   → -live-counts

Environment only:

	ADMIN_USERNAME, ADMIN_PASSWORD_HASH
	IMAGE_STORE_URL, IMAGE_STORE_KEY
	AUDIT_TOPIC (default election-audit)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if DATABASE_URL, ADMIN_USERNAME,
ADMIN_PASSWORD_HASH, ADMIN_TOKEN_SECRET or IP_HASH_SALT is missing, or if
a numeric, boolean or duration value does not parse.
*/
package cliparse
