package model

// GenerationRequest describes one book to generate. It is treated as
// immutable once handed to the facade: strategies read it, never write it.
// Seed is optional; when set, the whole run (including every content page)
// is reproducible.
type GenerationRequest struct {
	RequestID string    `json:"request_id"`
	Title     string    `json:"title"`
	Theme     string    `json:"theme"`
	Audience  Audience  `json:"audience"`
	Type      EbookType `json:"type"`
	PageCount int       `json:"page_count"`
	Seed      *int64    `json:"seed,omitempty"`
}

// ImageSpec describes the required shape of a generated image.
// Zero DPI means "not specified"; empty ColorMode means "any".
type ImageSpec struct {
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Format    PageFormat `json:"format"`
	DPI       int        `json:"dpi,omitempty"`
	ColorMode ColorMode  `json:"color_mode,omitempty"`
}

// PageMeta records one generated page. Data keeps the raw image bytes so a
// single page can be regenerated and re-assembled later without replaying
// the rest of the pipeline. Number is 1-based and contiguous within a result.
type PageMeta struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	Format   PageFormat `json:"format"`
	ByteSize int        `json:"byte_size"`
	Data     []byte     `json:"-"`
}

// GenerationResult is the outcome of a full pipeline run. Pages is ordered;
// its order defines page order in the assembled artifact and is never
// reordered afterwards.
type GenerationResult struct {
	ArtifactURI string     `json:"artifact_uri"`
	Pages       []PageMeta `json:"pages"`
}
