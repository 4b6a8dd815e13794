package model

import (
	"time"
)

// Report is a generated report artifact
type Report struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	Tenant          string    `json:"tenant"`
	Username        string    `json:"username,omitempty"`
	Filename        string    `json:"filename"`
	URL             string    `json:"url"`
	ObjectName      string    `json:"object_name"`
	ItemCount       int       `json:"item_count"`
	CustomItemCount int       `json:"custom_item_count"`
	FormulaFailures int       `json:"formula_failures"`
	Size            int       `json:"size"`
	CreatedAt       time.Time `json:"created_at"`
}

// Report kinds
const (
	KindInternalScope = "internal_scope"
)
