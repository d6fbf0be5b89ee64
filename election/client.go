// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/danielhkuo/quickly-elect/auth"
)

const maxUserAgentLen = 200

// ClientMeta describes the device a ballot was cast from
type ClientMeta struct {
	IP        string
	UserAgent string
}

// ipHash returns the salted hash of the client address, or nil when the
// address is unknown.
func (m ClientMeta) ipHash(salt string) *string {
	if m.IP == "" {
		return nil
	}
	h := auth.HashIP(m.IP, salt)
	return &h
}

// deviceSummary reduces a User-Agent header to "Browser on OS", with a
// mobile or bot marker. The raw header is never stored.
func (m ClientMeta) deviceSummary() *string {
	raw := strings.TrimSpace(m.UserAgent)
	if raw == "" {
		return nil
	}

	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown browser"
	}
	os := ua.OS()
	if os == "" {
		os = "unknown OS"
	}

	summary := browser + " on " + os
	switch {
	case ua.Bot():
		summary += " (bot)"
	case ua.Mobile():
		summary += " (mobile)"
	}
	if len(summary) > maxUserAgentLen {
		summary = summary[:maxUserAgentLen]
	}
	return &summary
}
