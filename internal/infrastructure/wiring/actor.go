package wiring

import (
	"os"
	"os/user"
)

// actorName is recorded as the author of changes in the audit trail.
func actorName() string {
	if v := os.Getenv("LABORBOARD_ACTOR"); v != "" {
		return v
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "system"
}
