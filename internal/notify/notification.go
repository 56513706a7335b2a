// Package notify keeps the viewer's local notification list and the markers
// that stop the same event from being announced twice.
package notify

import (
	"fmt"
	"time"
)

type Type string

const (
	TypeShared        Type = "shared"
	TypeAssigned      Type = "assigned"
	TypeStatusChanged Type = "status_changed"
	TypeUpdated       Type = "updated"
	TypeCreated       Type = "created"
)

// Notification is a local, never-synced message shown to the viewer.
type Notification struct {
	ID           string    `db:"id" json:"id" yaml:"id"`
	Type         Type      `db:"type" json:"type" yaml:"type"`
	Title        string    `db:"title" json:"title" yaml:"title"`
	Message      string    `db:"message" json:"message" yaml:"message"`
	TaskID       string    `db:"task_id" json:"taskId,omitempty" yaml:"taskId,omitempty"`
	TaskTitle    string    `db:"task_title" json:"taskTitle,omitempty" yaml:"taskTitle,omitempty"`
	FromUserID   string    `db:"from_user_id" json:"fromUserId,omitempty" yaml:"fromUserId,omitempty"`
	FromUserName string    `db:"from_user_name" json:"fromUserName,omitempty" yaml:"fromUserName,omitempty"`
	Read         bool      `db:"read" json:"read" yaml:"read"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt" yaml:"createdAt"`
}

type MarkerKind string

const (
	MarkerShared   MarkerKind = "shared"
	MarkerAssigned MarkerKind = "assigned"
	MarkerNote     MarkerKind = "note"
)

// MarkerKey identifies one announced event. Subject is the viewer for shared
// and assigned events and the note author for note events.
type MarkerKey struct {
	Kind    MarkerKind
	TaskID  string
	Subject string
}

func (k MarkerKey) String() string {
	return fmt.Sprintf("%s_%s_%s", k.Kind, k.TaskID, k.Subject)
}
