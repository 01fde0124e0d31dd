package entity

import "time"

// TimestampLayout is fixed-width so that upload timestamps sort
// lexicographically in every metadata backend.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

type Image struct {
	ID      string `json:"image_id"`
	OwnerID string `json:"owner_id"`

	Filename   string `json:"filename"`
	StorageKey string `json:"storage_key"`

	UploadTimestamp string `json:"upload_timestamp"`

	Tags        []string `json:"tags"`
	Description string   `json:"description,omitempty"`
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func (i *Image) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}

	return false
}
