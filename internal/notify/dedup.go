package notify

import (
	"context"
	"fmt"
	"sync"

	"taskManager/internal/identity"
	"taskManager/internal/logger"
	"taskManager/internal/viewmodel"

	"go.uber.org/zap"
)

// Deduplicator derives recipient-side notifications from the fetched task
// list. Each (kind, task, subject) event is announced at most once.
type Deduplicator struct {
	store *Store
	mu    sync.Mutex
}

func NewDeduplicator(store *Store) *Deduplicator {
	return &Deduplicator{store: store}
}

type candidate struct {
	key MarkerKey
	n   Notification
}

func candidates(t viewmodel.Task, viewer identity.Viewer, names identity.Names) []candidate {
	var out []candidate

	if t.OwnerID != "" && !t.IsCreatedByMe {
		from := names.Resolve(t.OwnerID, viewer)
		if t.IsSharedWithMe {
			out = append(out, candidate{
				key: MarkerKey{Kind: MarkerShared, TaskID: t.ID, Subject: viewer.ID},
				n: Notification{
					Type:         TypeShared,
					Title:        "Task shared with you",
					Message:      fmt.Sprintf("%s shared %q with you", from, t.Title),
					TaskID:       t.ID,
					TaskTitle:    t.Title,
					FromUserID:   t.OwnerID,
					FromUserName: from,
				},
			})
		}
		if t.IsAssignedToMe {
			out = append(out, candidate{
				key: MarkerKey{Kind: MarkerAssigned, TaskID: t.ID, Subject: viewer.ID},
				n: Notification{
					Type:         TypeAssigned,
					Title:        "Task assigned to you",
					Message:      fmt.Sprintf("%s assigned %q to you", from, t.Title),
					TaskID:       t.ID,
					TaskTitle:    t.Title,
					FromUserID:   t.OwnerID,
					FromUserName: from,
				},
			})
		}
	}

	if t.Note != "" && t.NoteAuthorID != "" && t.NoteAuthorID != viewer.ID && t.IsCreatedByMe {
		author := names.Resolve(t.NoteAuthorID, viewer)
		out = append(out, candidate{
			key: MarkerKey{Kind: MarkerNote, TaskID: t.ID, Subject: t.NoteAuthorID},
			n: Notification{
				Type:         TypeUpdated,
				Title:        "New note",
				Message:      fmt.Sprintf("%s added a note to %q", author, t.Title),
				TaskID:       t.ID,
				TaskTitle:    t.Title,
				FromUserID:   t.NoteAuthorID,
				FromUserName: author,
			},
		})
	}
	return out
}

// Evaluate emits every not-yet-announced event found in tasks and returns the
// new notifications. Running it again over the same list emits nothing.
func (d *Deduplicator) Evaluate(ctx context.Context, tasks []viewmodel.Task, viewer identity.Viewer, names identity.Names) ([]Notification, error) {
	if viewer.ID == "" {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var emitted []Notification
	for _, t := range tasks {
		for _, c := range candidates(t, viewer, names) {
			n, ok, err := d.store.EmitOnce(ctx, viewer.ID, c.key, c.n)
			if err != nil {
				return emitted, err
			}
			if ok {
				logger.Debug("Notify: emitted",
					zap.String("marker", c.key.String()),
					zap.String("type", string(n.Type)))
				emitted = append(emitted, n)
			}
		}
	}
	return emitted, nil
}

// Prune drops the viewer's markers of tasks missing from the viewer's fetched list.
func (d *Deduplicator) Prune(ctx context.Context, tasks []viewmodel.Task, viewer identity.Viewer) (int64, error) {
	keep := make([]string, 0, len(tasks))
	for _, t := range tasks {
		keep = append(keep, t.ID)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.PruneMarkers(ctx, viewer.ID, keep)
}
