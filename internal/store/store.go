// Package store persists subscriber records as a single JSON snapshot file.
package store

import "time"

// NotificationFlags mirrors the reminder flag block carried by existing data
// files. No workflow transition updates it after creation; it is kept so that
// files written by earlier deployments keep loading and saving unchanged.
type NotificationFlags struct {
	Expired bool `json:"expired"`
	Soon    bool `json:"soon"`
	Hour    bool `json:"hour"`
}

// Subscriber describes one user's access window. A nil ExpiresAt together
// with Forever=true marks an unlimited subscription.
type Subscriber struct {
	ExpiresAt     *time.Time
	Forever       bool
	Notifications NotificationFlags
}

// Active reports whether the subscription grants access at the given instant.
func (s Subscriber) Active(now time.Time) bool {
	if s.Forever {
		return true
	}
	if s.ExpiresAt == nil {
		return false
	}
	return now.Before(*s.ExpiresAt)
}
