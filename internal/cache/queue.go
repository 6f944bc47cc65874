package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// QueueEntry is one buffered remote write: a whole-category payload
// destined for a workspace path, plus the ids the write removed locally
// (the merge layer's tombstone signal).
type QueueEntry struct {
	ID         int64
	Category   string
	Path       string
	Payload    json.RawMessage
	RemovedIDs []string
}

// Enqueue appends a write to the dirty queue and returns its id.
// Replay order is insertion order; the id is monotonically increasing.
func (c *Cache) Enqueue(ctx context.Context, e QueueEntry, now int64) (int64, error) {
	removed, err := json.Marshal(e.RemovedIDs)
	if err != nil {
		return 0, fmt.Errorf("enqueue %s: %w", e.Category, err)
	}
	res, err := c.db.ExecContext(ctx, `
		INSERT INTO dirty_queue (category, path, payload, removed_ids, enqueued_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.Category, e.Path, string(e.Payload), string(removed), now)
	if err != nil {
		return 0, fmt.Errorf("enqueue %s: %w", e.Category, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("enqueue %s: %w", e.Category, err)
	}
	return id, nil
}

// Pending returns all queued writes in submission order.
func (c *Cache) Pending(ctx context.Context) ([]QueueEntry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, category, path, payload, removed_ids
		FROM dirty_queue ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("pending: %w", err)
	}
	defer rows.Close()

	var out []QueueEntry
	for rows.Next() {
		var e QueueEntry
		var payload, removed string
		if err := rows.Scan(&e.ID, &e.Category, &e.Path, &payload, &removed); err != nil {
			return nil, fmt.Errorf("pending: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		// A corrupt removed_ids entry degrades to "no tombstones", the
		// same contract as a corrupt kv value.
		_ = json.Unmarshal([]byte(removed), &e.RemovedIDs)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending: %w", err)
	}
	return out, nil
}

// Ack removes a confirmed write from the queue.
func (c *Cache) Ack(ctx context.Context, id int64) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM dirty_queue WHERE id = ?`, id); err != nil {
		return fmt.Errorf("ack %d: %w", id, err)
	}
	return nil
}

// DirtyCategories returns the distinct categories with queued writes.
func (c *Cache) DirtyCategories(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM dirty_queue ORDER BY category ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("dirty categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, fmt.Errorf("dirty categories: %w", err)
		}
		out = append(out, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dirty categories: %w", err)
	}
	return out, nil
}

// RemovedIDs returns the union of tombstoned ids across every pending
// write of a category. While any of those writes is unconfirmed, a
// remote snapshot must not resurrect these ids.
func (c *Cache) RemovedIDs(ctx context.Context, category string) (map[string]bool, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT removed_ids FROM dirty_queue WHERE category = ? ORDER BY id ASC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("removed ids %s: %w", category, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("removed ids %s: %w", category, err)
		}
		var ids []string
		_ = json.Unmarshal([]byte(raw), &ids)
		for _, id := range ids {
			out[id] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("removed ids %s: %w", category, err)
	}
	return out, nil
}
