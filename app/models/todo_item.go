package models

// TodoItem is the single managed resource. ID is assigned by the store on commit.
type TodoItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Clone returns a deep copy so stored items never alias caller memory.
func (t TodoItem) Clone() TodoItem {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	return t
}

// StringPtr is a convenience for building optional descriptions.
func StringPtr(s string) *string {
	return &s
}
