package models

// Tag represents a row of the tags table.
type Tag struct {
	TagID   string `db:"tag_id"`
	Name    string `db:"name"`
	OwnerID string `db:"owner_id"`
	AuditFields
}
