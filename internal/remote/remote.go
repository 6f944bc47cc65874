// Package remote defines the storage-agnostic contract for the shared
// workspace store: a keyed, hierarchical value store supporting one-shot
// reads, whole-value writes, and continuous push subscriptions.
//
// Any push-capable keyed store can implement Store; the replication
// engine never assumes a concrete backend. Memory is the in-process
// implementation used for tests and single-machine operation.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Value is an opaque JSON document stored at a path.
type Value = json.RawMessage

// ErrNotFound is returned by Read when no value exists at the path.
var ErrNotFound = errors.New("remote: value not found")

// ErrUnauthorized is returned by implementations when the caller may
// not write to the path. The engine reacts by falling back to an
// alternate workspace path or queueing the write.
var ErrUnauthorized = errors.New("remote: write not permitted")

// Store is the remote workspace contract.
//
// Subscribe registers a callback for pushes of the value at path; the
// callback also fires once with the current value when one exists. The
// returned cancel function detaches the subscription. Callbacks may be
// invoked from any goroutine; consumers serialize through their own
// event queue.
type Store interface {
	Read(ctx context.Context, path string) (Value, error)
	Write(ctx context.Context, path string, v Value) error
	Delete(ctx context.Context, path string) error
	Subscribe(path string, fn func(Value)) (cancel func())
}

// Path builds the namespaced path of a category inside a workspace.
// Multi-currency profiles add one level: workspaces/<ws>/<profile>/<cat>.
func Path(workspace, profile, category string) string {
	if profile == "" {
		return fmt.Sprintf("workspaces/%s/%s", workspace, category)
	}
	return fmt.Sprintf("workspaces/%s/%s/%s", workspace, profile, category)
}
