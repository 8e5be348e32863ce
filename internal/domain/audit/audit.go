package audit

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Category groups audit events by the part of the marketplace they touch.
type Category string

const (
	CategoryAccount  Category = "account"
	CategoryBooking  Category = "booking"
	CategoryCoach    Category = "coach"
	CategoryCatalog  Category = "catalog"
	CategorySecurity Category = "security"
	CategorySystem   Category = "system"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionLogin        Action = "login"
	ActionLogout       Action = "logout"
	ActionStatusChange Action = "status_change"
	ActionProvision    Action = "provision"
)

// Severity represents the severity level of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Domain errors
var (
	ErrEmptyCategory = errors.New("audit category is required")
	ErrEmptyAction   = errors.New("audit action is required")
	ErrBadSeverity   = errors.New("invalid audit severity")
)

// Event represents a single audit log entry.
// ActorID is empty for events raised by background jobs.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	Severity     Severity  `json:"severity"`
	ActorID      string    `json:"actor_id"`
	ActorEmail   string    `json:"actor_email"`
	ActorRole    string    `json:"actor_role"`
	ResourceID   string    `json:"resource_id"`
	ResourceType string    `json:"resource_type"`
	Description  string    `json:"description"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	Metadata     string    `json:"metadata"`
}

// NewEvent creates a new audit event stamped with now.
// PRE: category and action are non-empty
// POST: Returns an info-level Event with a fresh UUID
func NewEvent(actorID, actorEmail, actorRole string, category Category, action Action) Event {
	return Event{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Category:   category,
		Action:     action,
		Severity:   SeverityInfo,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		ActorRole:  actorRole,
	}
}

// SystemEvent creates an event raised by a background job.
func SystemEvent(category Category, action Action) Event {
	return NewEvent("", "", "system", category, action)
}

// Validate checks if the Event has valid data.
func (e Event) Validate() error {
	if e.Category == "" {
		return ErrEmptyCategory
	}
	if e.Action == "" {
		return ErrEmptyAction
	}
	switch e.Severity {
	case SeverityInfo, SeverityWarning, SeverityCritical:
	default:
		return ErrBadSeverity
	}
	return nil
}

// WithSeverity sets the severity level.
func (e Event) WithSeverity(s Severity) Event {
	e.Severity = s
	return e
}

// WithResource sets resource information.
// PRE: resourceType and resourceID are non-empty
// POST: Event resource fields are populated
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}

// WithRequest sets IP address and user agent from the HTTP request.
func (e Event) WithRequest(ipAddress, userAgent string) Event {
	e.IPAddress = ipAddress
	e.UserAgent = userAgent
	return e
}

// WithMetadata encodes fields as the event's JSON metadata.
// POST: Metadata is left empty when fields is empty or cannot be encoded
func (e Event) WithMetadata(fields map[string]string) Event {
	if len(fields) == 0 {
		return e
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return e
	}
	e.Metadata = string(b)
	return e
}
