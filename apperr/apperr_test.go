// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindMatching(t *testing.T) {
	err := Wrap(KindNotFound, sql.ErrNoRows, "candidate %s not found", "c1")
	wrapped := fmt.Errorf("cast ballot: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrAlreadyVoted))
	assert.True(t, errors.Is(wrapped, sql.ErrNoRows))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "candidate c1 not found", MessageOf(wrapped))
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("pq: connection refused")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal error", MessageOf(err))
}
