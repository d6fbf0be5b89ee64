// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package imagestore uploads candidate and voter photos to an external
// image host.
package imagestore
