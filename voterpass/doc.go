// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package voterpass issues and resolves the short-lived tokens a voter
// holds between verifying their code and completing their ballot.
//
// MemoryStore serves a single instance; RedisStore shares passes across
// instances. Both slide the expiry on every Resolve.
package voterpass
