// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package logging

import (
	"slices"
	"strings"
	"sync"
)

// TestLogCapture records every write as one entry so tests can assert on
// what a handler emitted. Safe for concurrent use.
type TestLogCapture struct {
	mu      sync.RWMutex
	entries []string
}

func NewTestLogCaptureQuiet() *TestLogCapture {
	return &TestLogCapture{}
}

func (c *TestLogCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, string(p))
	return len(p), nil
}

// ContainsAll reports whether every substring occurs in some entry. The
// substrings may be spread over different entries.
func (c *TestLogCapture) ContainsAll(substrs ...string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range substrs {
		if !slices.ContainsFunc(c.entries, func(e string) bool { return strings.Contains(e, s) }) {
			return false
		}
	}
	return true
}

// Count returns how many entries contain substr.
func (c *TestLogCapture) Count(substr string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if strings.Contains(e, substr) {
			n++
		}
	}
	return n
}

func (c *TestLogCapture) GetEntries() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.entries)
}
