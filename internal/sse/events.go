// Package sse implements Server-Sent Events for pushing engine state changes to clients.
package sse

import (
	"time"

	"github.com/promptdeck/promptdeck-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventPromptCreated represents a new prompt chain being started.
	EventPromptCreated EventType = "prompt.created"
	// EventPromptUpdated represents a prompt edit (a new version superseding the latest).
	EventPromptUpdated EventType = "prompt.updated"
	// EventPromptVersionDeleted represents one or more versions being removed.
	EventPromptVersionDeleted EventType = "prompt.version_deleted"
	// EventPromptTagsChanged represents the tag set of a prompt being replaced.
	EventPromptTagsChanged EventType = "prompt.tags_changed"

	// EventTagCreated represents a tag creation event.
	EventTagCreated EventType = "tag.created"
	// EventTagDeleted represents a tag deletion event.
	EventTagDeleted EventType = "tag.deleted"
	// EventTagRenamed represents a tag rename, including descendant path rewrites.
	EventTagRenamed EventType = "tag.renamed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`
}

// PromptEventData is the data payload for prompt create/update events.
type PromptEventData struct {
	Prompt *domain.PromptVersion `json:"prompt"`
}

// PromptVersionDeletedData is the data payload for version delete events.
type PromptVersionDeletedData struct {
	DeletedAt  time.Time `json:"deleted_at"`
	RootID     string    `json:"root_id"`
	VersionIDs []string  `json:"version_ids"`
}

// PromptTagsChangedData is the data payload for tag replacement events.
type PromptTagsChangedData struct {
	PromptID string   `json:"prompt_id"`
	TagPaths []string `json:"tag_paths"`
}

// TagEventData is the data payload for tag create/delete events.
type TagEventData struct {
	Tag *domain.Tag `json:"tag"`
}

// TagRenamedData is the data payload for tag rename events.
type TagRenamedData struct {
	Tag     *domain.Tag `json:"tag"`
	OldPath string      `json:"old_path"`
	// RewrittenPaths maps descendant tag IDs to their new full paths.
	RewrittenPaths map[string]string `json:"rewritten_paths,omitempty"`
}

// NewPromptCreatedEvent creates a prompt created event.
func NewPromptCreatedEvent(v *domain.PromptVersion) Event {
	return Event{
		Type:      EventPromptCreated,
		Timestamp: time.Now(),
		Data:      PromptEventData{Prompt: v},
	}
}

// NewPromptUpdatedEvent creates a prompt updated event for a superseding version.
func NewPromptUpdatedEvent(v *domain.PromptVersion) Event {
	return Event{
		Type:      EventPromptUpdated,
		Timestamp: time.Now(),
		Data:      PromptEventData{Prompt: v},
	}
}

// NewPromptVersionDeletedEvent creates a version deleted event.
func NewPromptVersionDeletedEvent(rootID string, versionIDs []string) Event {
	return Event{
		Type:      EventPromptVersionDeleted,
		Timestamp: time.Now(),
		Data: PromptVersionDeletedData{
			DeletedAt:  time.Now(),
			RootID:     rootID,
			VersionIDs: versionIDs,
		},
	}
}

// NewPromptTagsChangedEvent creates a tags changed event.
func NewPromptTagsChangedEvent(promptID string, tagPaths []string) Event {
	return Event{
		Type:      EventPromptTagsChanged,
		Timestamp: time.Now(),
		Data:      PromptTagsChangedData{PromptID: promptID, TagPaths: tagPaths},
	}
}

// NewTagCreatedEvent creates a tag created event.
func NewTagCreatedEvent(t *domain.Tag) Event {
	return Event{
		Type:      EventTagCreated,
		Timestamp: time.Now(),
		Data:      TagEventData{Tag: t},
	}
}

// NewTagDeletedEvent creates a tag deleted event.
func NewTagDeletedEvent(t *domain.Tag) Event {
	return Event{
		Type:      EventTagDeleted,
		Timestamp: time.Now(),
		Data:      TagEventData{Tag: t},
	}
}

// NewTagRenamedEvent creates a tag renamed event.
func NewTagRenamedEvent(t *domain.Tag, oldPath string, rewritten map[string]string) Event {
	return Event{
		Type:      EventTagRenamed,
		Timestamp: time.Now(),
		Data:      TagRenamedData{Tag: t, OldPath: oldPath, RewrittenPaths: rewritten},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
		Data:      map[string]string{"status": "alive"},
	}
}
