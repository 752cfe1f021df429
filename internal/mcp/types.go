package mcp

import "time"

// SaveLayoutInput is the input for the save_layout tool.
type SaveLayoutInput struct {
	Name        string `json:"name" jsonschema:"required,Name for the new layout"`
	Description string `json:"description,omitempty" jsonschema:"Optional layout description"`
}

// SaveLayoutOutput is the output for the save_layout tool.
type SaveLayoutOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	WindowCount int    `json:"window_count"`
}

// RestoreLayoutInput is the input for the restore_layout tool.
type RestoreLayoutInput struct {
	ID   string `json:"id,omitempty" jsonschema:"Layout id to restore. One of id or name is required."`
	Name string `json:"name,omitempty" jsonschema:"Layout name to restore (first case-insensitive match)"`
}

// RestoreLayoutOutput is the output for the restore_layout tool.
type RestoreLayoutOutput struct {
	ID       string `json:"id"`
	Restored bool   `json:"restored"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct {
	Name string `json:"name,omitempty" jsonschema:"Optional case-insensitive name filter"`
}

// LayoutSummary describes one persisted layout.
type LayoutSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	WindowCount int       `json:"window_count"`
	IsActive    bool      `json:"is_active"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutSummary `json:"layouts"`
}

// DeleteLayoutInput is the input for the delete_layout tool.
type DeleteLayoutInput struct {
	ID string `json:"id" jsonschema:"required,Layout id to delete"`
}

// DeleteLayoutOutput is the output for the delete_layout tool.
type DeleteLayoutOutput struct {
	Deleted bool `json:"deleted"`
}

// ActivateLayoutInput is the input for the activate_layout tool.
type ActivateLayoutInput struct {
	ID string `json:"id" jsonschema:"required,Layout id to activate"`
}

// ActivateLayoutOutput is the output for the activate_layout tool.
type ActivateLayoutOutput struct {
	Activated bool `json:"activated"`
}
