// internal/app/store/audit/event.go
package audit

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories group event types; each has its own log destination setting.
const (
	CategoryAuth    = "auth"
	CategoryAdmin   = "admin"
	CategoryCatalog = "catalog"
)

// Sign-in events. UserID is the profile that tried to sign in, when known.
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserBlocked   = "login_failed_user_blocked"
	EventLoginFailedNotAdmin      = "login_failed_not_admin"
	EventLoginLockedOut           = "login_locked_out"
	EventLogout                   = "logout"
	EventPasswordChanged          = "password_changed"
)

// Operator actions on a profile. UserID is the target, ActorID the operator.
const (
	EventBalanceAdjusted = "balance_adjusted"
	EventUserBlocked     = "user_blocked"
	EventUserUnblocked   = "user_unblocked"
	EventPasswordReset   = "password_reset"
)

// Catalog changes. Details carry video_id and title.
const (
	EventVideoCreated     = "video_created"
	EventVideoUpdated     = "video_updated"
	EventVideoDeleted     = "video_deleted"
	EventVideoActivated   = "video_activated"
	EventVideoDeactivated = "video_deactivated"
)

// Event is one audit_logs document.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	Category  string             `bson:"category"`
	EventType string             `bson:"event_type"`

	UserID  *primitive.ObjectID `bson:"user_id,omitempty"`
	ActorID *primitive.ObjectID `bson:"actor_id,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool              `bson:"success"`
	FailureReason string            `bson:"failure_reason,omitempty"`
	Details       map[string]string `bson:"details,omitempty"`
}

// Label renders an event type for people: "user_blocked" is "User blocked".
func Label(eventType string) string {
	s := strings.ReplaceAll(eventType, "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
