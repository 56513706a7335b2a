package user

import "time"

// ExternalUser is a collaborator in the directory used to resolve assignee and
// share-target ids to names.
type ExternalUser struct {
	ID        string     `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Avatar    string     `json:"avatar,omitempty" db:"avatar"`
	IsActive  bool       `json:"isActive" db:"is_active"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}
