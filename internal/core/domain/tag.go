package domain

// Tag groups transactions and schedulers of one user.
type Tag struct {
	TagID   string `json:"tagID"`
	Name    string `json:"name"`
	OwnerID string `json:"ownerID"`
	AuditFields
}
