// Package model defines the core data types for the book generation pipeline:
// the request/result shapes crossing the provider ports, usage and cost value
// objects, domain events, the error taxonomy, and the Ebook entity itself.
package model

import "time"

// EbookType is the closed set of book variants the pipeline can produce.
// Each type maps to exactly one generation strategy.
type EbookType string

const (
	TypeColoring EbookType = "coloring"
)

// ValidEbookType checks if a string names a known ebook type.
func ValidEbookType(s string) bool {
	return EbookType(s) == TypeColoring
}

// Audience is the target readership for a book. It steers prompt wording
// and the quality policy (children's books get stricter simplicity rules).
type Audience string

const (
	AudienceChildren Audience = "children"
	AudienceAdults   Audience = "adults"
)

// ColorMode constrains the color space of a generated image.
type ColorMode string

const (
	ColorModeBlackWhite ColorMode = "black_white"
	ColorModeColor      ColorMode = "color"
)

// PageFormat tags an image payload as raster or vector.
type PageFormat string

const (
	FormatRaster PageFormat = "raster"
	FormatVector PageFormat = "vector"
)

// ExportType selects the assembly variant. KDP exports add bleed and
// barcode reserve to the trim size; web exports use the trim size as-is.
type ExportType string

const (
	ExportKDP ExportType = "kdp"
	ExportWeb ExportType = "web"
)

// EbookStatus is the approval state of a generated book.
// Transitions are enforced by the lifecycle use cases, never set directly.
type EbookStatus string

const (
	StatusDraft    EbookStatus = "draft"
	StatusPending  EbookStatus = "pending"
	StatusApproved EbookStatus = "approved"
	StatusRejected EbookStatus = "rejected"
)

// Ebook is the persisted entity for one generated book. The ID is assigned
// by the repository on first insert. StorageRef points at the assembled
// artifact, PreviewRef at the operator preview; both must be set before the
// book can leave draft.
type Ebook struct {
	ID         int64       `db:"id" json:"id"`
	RequestID  string      `db:"request_id" json:"request_id"`
	Title      string      `db:"title" json:"title"`
	Theme      string      `db:"theme" json:"theme"`
	Type       EbookType   `db:"type" json:"type"`
	Audience   Audience    `db:"audience" json:"audience"`
	PageCount  int         `db:"page_count" json:"page_count"`
	Status     EbookStatus `db:"status" json:"status"`
	StorageRef string      `db:"storage_ref" json:"storage_ref"`
	PreviewRef string      `db:"preview_ref" json:"preview_ref"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// HasArtifacts reports whether both the stored artifact and the preview
// exist. This is the guard for leaving draft status.
func (e *Ebook) HasArtifacts() bool {
	return e.StorageRef != "" && e.PreviewRef != ""
}
