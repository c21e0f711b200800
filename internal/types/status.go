package types

// Status is the row lifecycle status shared by every persisted entity.
// It is independent of the commercial status each entity tracks separately.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)
