package internal

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// CheckStatus is the cached outcome of a file existence probe.
type CheckStatus string

const (
	CheckPending CheckStatus = "pending"
	CheckExists  CheckStatus = "exists"
	CheckMissing CheckStatus = "missing"
	CheckError   CheckStatus = "error"
)

const (
	probeTimeout  = 1500 * time.Millisecond
	errorRetryTTL = 10 * time.Second
)

// Prober answers whether a path exists. Implementations may block; the cache
// bounds every call with a timeout.
type Prober interface {
	Probe(ctx context.Context, path string) (bool, error)
}

// StatProber probes the local filesystem.
type StatProber struct{}

// Probe reports whether path exists, honoring context cancellation.
func (StatProber) Probe(ctx context.Context, path string) (bool, error) {
	type statResult struct {
		exists bool
		err    error
	}
	done := make(chan statResult, 1)
	go func() {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			done <- statResult{exists: true}
		case errors.Is(err, fs.ErrNotExist):
			done <- statResult{exists: false}
		default:
			done <- statResult{err: err}
		}
	}()
	select {
	case result := <-done:
		return result.exists, result.err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// FileCheckEntry records one resolved probe outcome.
type FileCheckEntry struct {
	Status    CheckStatus
	CheckedAt time.Time
}

// FileExistenceCache deduplicates and caches file existence checks per
// resolved path. Exists and missing outcomes are cached for the lifetime of
// the cache; errors allow a retry after a short TTL. The cache is scoped to
// one open transcript and discarded with it, so state never leaks between
// sessions.
type FileExistenceCache struct {
	mu       sync.Mutex
	prober   Prober
	entries  map[string]FileCheckEntry
	inflight map[string]bool
	notify   func(path string, status CheckStatus)
	now      func() time.Time
}

// NewFileExistenceCache creates a cache backed by the given prober. A nil
// prober defaults to the local filesystem.
func NewFileExistenceCache(prober Prober) *FileExistenceCache {
	if prober == nil {
		prober = StatProber{}
	}
	return &FileExistenceCache{
		prober:   prober,
		entries:  make(map[string]FileCheckEntry),
		inflight: make(map[string]bool),
		now:      time.Now,
	}
}

// SetNotify registers a callback fired once per completed probe, so the
// consumer can re-evaluate references that rendered while the probe was
// pending.
func (c *FileExistenceCache) SetNotify(fn func(path string, status CheckStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

// Checkable resolves a raw reference against the session work path and
// reports whether it can be probed at all. Absolute paths are checkable
// as-is; relative paths need a work path to resolve against. Bare names
// without any work context are not checkable and should render
// optimistically.
func (c *FileExistenceCache) Checkable(raw, workPath string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if filepath.IsAbs(raw) || isDrivePath(raw) || strings.HasPrefix(raw, `\\`) {
		return filepath.Clean(raw), true
	}
	if workPath != "" {
		return filepath.Join(workPath, raw), true
	}
	return raw, false
}

// Status returns the cached state for a resolved path, launching a probe
// when none is cached. Exactly one probe is in flight per path; concurrent
// callers observe CheckPending and are satisfied by the same completion.
func (c *FileExistenceCache) Status(resolved string) CheckStatus {
	c.mu.Lock()

	if entry, ok := c.entries[resolved]; ok {
		if entry.Status != CheckError || c.now().Sub(entry.CheckedAt) < errorRetryTTL {
			c.mu.Unlock()
			return entry.Status
		}
		// Stale error entry: fall through and probe again.
		delete(c.entries, resolved)
	}

	if c.inflight[resolved] {
		c.mu.Unlock()
		return CheckPending
	}
	c.inflight[resolved] = true
	c.mu.Unlock()

	go c.probe(resolved)
	return CheckPending
}

func (c *FileExistenceCache) probe(resolved string) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	exists, err := c.prober.Probe(ctx, resolved)
	status := CheckError
	switch {
	case err == nil && exists:
		status = CheckExists
	case err == nil:
		status = CheckMissing
	default:
		LogDebug("Existence probe failed for %s: %v", resolved, err)
	}

	c.mu.Lock()
	delete(c.inflight, resolved)
	c.entries[resolved] = FileCheckEntry{Status: status, CheckedAt: c.now()}
	notify := c.notify
	c.mu.Unlock()

	if notify != nil {
		notify(resolved, status)
	}
}

// Wait blocks until every launched probe has resolved or the timeout
// elapses, reporting whether the cache settled. Consumers call it before a
// final render so references that were pending can resolve first.
func (c *FileExistenceCache) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		c.mu.Lock()
		settled := len(c.inflight) == 0
		c.mu.Unlock()
		if settled {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// ShouldLink applies the link-rendering policy: a reference is actionable
// when it cannot be checked at all, or when it is checkable and known to
// exist. Pending, missing, and errored references render as plain text.
func (c *FileExistenceCache) ShouldLink(raw, workPath string) bool {
	resolved, checkable := c.Checkable(raw, workPath)
	if !checkable {
		return true
	}
	return c.Status(resolved) == CheckExists
}
