package sync

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/roach88/dueline/internal/cache"
	"github.com/roach88/dueline/internal/remote"
)

// replicate pushes one category's payload to the remote. Offline, or
// when the remote refuses and no fallback absorbs it, the write lands
// in the durable dirty queue; buffering is success, not failure.
// Caller holds the mutex.
func (e *Engine) replicateLocked(ctx context.Context, cat Category, payload json.RawMessage, removed []string) error {
	path := e.path(cat)

	if !e.online {
		return e.enqueueLocked(ctx, cat, path, payload, removed)
	}

	if e.dirty[cat] {
		// Older queued writes must reach the remote first. A direct
		// write here would later be overwritten when the queue replays
		// its stale payloads, losing this one. Join the queue, then try
		// to drain it in order right away.
		if err := e.enqueueLocked(ctx, cat, path, payload, removed); err != nil {
			return err
		}
		e.flushLocked(ctx)
		return nil
	}

	err := e.writeWithFallback(ctx, path, payload)
	if err == nil {
		if !e.dirty[cat] {
			e.states[cat] = StateSynced
		}
		return nil
	}
	e.log.Warn("remote write failed, queued", "category", cat, "error", err)
	return e.enqueueLocked(ctx, cat, path, payload, removed)
}

// writeWithFallback writes to path, diverting to the fallback workspace
// when the primary rejects the write outright.
func (e *Engine) writeWithFallback(ctx context.Context, path string, payload json.RawMessage) error {
	err := e.cfg.Remote.Write(ctx, path, payload)
	if err == nil || !errors.Is(err, remote.ErrUnauthorized) || e.cfg.FallbackWorkspace == "" {
		return err
	}

	cat := categoryOfPath(path)
	fb := remote.Path(e.cfg.FallbackWorkspace, e.cfg.Profile, cat)
	if ferr := e.cfg.Remote.Write(ctx, fb, payload); ferr != nil {
		return &SyncError{
			Code:     ErrCodeWriteRejected,
			Category: Category(cat),
			Path:     path,
			Message:  "write rejected and fallback failed",
			Err:      ferr,
		}
	}
	e.log.Warn("write rejected, diverted to fallback workspace",
		"path", path, "fallback", e.cfg.FallbackWorkspace)
	return nil
}

// enqueueLocked buffers a write in the dirty queue and flags the
// category as locally ahead of the remote.
func (e *Engine) enqueueLocked(ctx context.Context, cat Category, path string, payload json.RawMessage, removed []string) error {
	_, err := e.cfg.Cache.Enqueue(ctx, cache.QueueEntry{
		Category:   string(cat),
		Path:       path,
		Payload:    payload,
		RemovedIDs: removed,
	}, e.clock.Now().Unix())
	if err != nil {
		return newCacheError(cat, err)
	}
	e.dirty[cat] = true
	e.states[cat] = StateMergePending
	return nil
}

// flushLocked replays the dirty queue in submission order. The first
// failure stops the replay (later writes must not overtake earlier
// ones) and pushes the next attempt out on an exponential, capped
// backoff. Caller holds the mutex and has checked connectivity.
func (e *Engine) flushLocked(ctx context.Context) {
	now := e.clock.Now()
	if now.Before(e.flushNotBefore) {
		return
	}

	entries, err := e.cfg.Cache.Pending(ctx)
	if err != nil {
		e.log.Error("flush: reading dirty queue failed", "error", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	for _, entry := range entries {
		if err := e.writeWithFallback(ctx, entry.Path, entry.Payload); err != nil {
			e.flushAttempts++
			delay := e.backoff()
			e.flushNotBefore = e.clock.Now().Add(delay)
			e.log.Warn("flush: write failed, backing off",
				"category", entry.Category,
				"attempt", e.flushAttempts,
				"retry_in", delay,
				"error", err)
			return
		}
		if err := e.cfg.Cache.Ack(ctx, entry.ID); err != nil {
			e.log.Error("flush: ack failed", "id", entry.ID, "error", err)
			return
		}
	}

	e.flushAttempts = 0
	e.flushNotBefore = time.Time{}

	wasDirty := e.dirty
	if err := e.recomputeDirtyLocked(ctx); err != nil {
		e.log.Error("flush: rebuilding dirty flags failed", "error", err)
		return
	}
	for cat := range wasDirty {
		if !e.dirty[cat] {
			e.states[cat] = StateSynced
		}
	}
	e.log.Info("flush complete", "flushed", len(entries))
}

// Flush forces an immediate replay of the dirty queue, bypassing any
// pending backoff window. It is a no-op while offline.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.online {
		return
	}
	e.flushNotBefore = time.Time{}
	e.flushLocked(ctx)
}

// PendingWrites reports the number of queued writes awaiting replay.
func (e *Engine) PendingWrites(ctx context.Context) (int, error) {
	entries, err := e.cfg.Cache.Pending(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// backoff computes the delay after flushAttempts consecutive failures.
func (e *Engine) backoff() time.Duration {
	shift := e.flushAttempts - 1
	if shift > 20 {
		shift = 20
	}
	d := e.backoffBase << uint(shift)
	if d <= 0 || d > e.backoffMax {
		d = e.backoffMax
	}
	return d
}

// categoryOfPath extracts the trailing category segment of a workspace
// path.
func categoryOfPath(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
