package entity

import "time"

type EventType string

const (
	EventImageCreated       EventType = "image.created"
	EventImageDeleted       EventType = "image.deleted"
	EventImageDeletePartial EventType = "image.delete_partial"
)

// LifecycleEvent is the payload published for every image create/delete.
// BlobDeleted and RecordDeleted are only meaningful for delete events.
type LifecycleEvent struct {
	Type       EventType `json:"type"`
	ImageID    string    `json:"image_id"`
	OwnerID    string    `json:"owner_id"`
	StorageKey string    `json:"storage_key"`

	BlobDeleted   bool `json:"blob_deleted,omitempty"`
	RecordDeleted bool `json:"record_deleted,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}
