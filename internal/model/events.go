package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventHeader carries the fields every domain event shares: a generated
// unique id, when the event occurred, and the aggregate it concerns.
// Events are facts about the past — they are never mutated after creation.
type EventHeader struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	AggregateID string    `json:"aggregate_id"`
}

// NewEventHeader creates a header with a fresh UUID and the current time.
func NewEventHeader(aggregateID string) EventHeader {
	return EventHeader{
		EventID:     uuid.New().String(),
		OccurredAt:  time.Now().UTC(),
		AggregateID: aggregateID,
	}
}

// Event is the contract the bus dispatches on. Name identifies the concrete
// event type; subscribers register per name.
type Event interface {
	Name() string
	Header() EventHeader
}

// Event names, used for subscription.
const (
	EventCostCalculated  = "cost.calculated"
	EventTokensConsumed  = "tokens.consumed"
	EventEbookApproved   = "ebook.approved"
	EventEbookRejected   = "ebook.rejected"
	EventPageRegenerated = "page.regenerated"
	EventExportGenerated = "export.generated"
)

// CostCalculatedEvent is published once generation for a request completes
// and its usage records have been summed.
type CostCalculatedEvent struct {
	EventHeader
	RequestID   string          `json:"request_id"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	TotalTokens int             `json:"total_tokens"`
	CallCount   int             `json:"call_count"`
}

func (e CostCalculatedEvent) Name() string        { return EventCostCalculated }
func (e CostCalculatedEvent) Header() EventHeader { return e.EventHeader }

// TokensConsumedEvent is published after each text-model call that reports
// token usage.
type TokensConsumedEvent struct {
	EventHeader
	RequestID        string          `json:"request_id"`
	Model            string          `json:"model"`
	PromptTokens     int             `json:"prompt_tokens"`
	CompletionTokens int             `json:"completion_tokens"`
	Cost             decimal.Decimal `json:"cost"`
}

func (e TokensConsumedEvent) Name() string        { return EventTokensConsumed }
func (e TokensConsumedEvent) Header() EventHeader { return e.EventHeader }

// EbookApprovedEvent is published when an operator approves a book.
type EbookApprovedEvent struct {
	EventHeader
	EbookID    int64  `json:"ebook_id"`
	ReviewedBy string `json:"reviewed_by,omitempty"`
}

func (e EbookApprovedEvent) Name() string        { return EventEbookApproved }
func (e EbookApprovedEvent) Header() EventHeader { return e.EventHeader }

// EbookRejectedEvent is published when an operator rejects a book.
type EbookRejectedEvent struct {
	EventHeader
	EbookID int64  `json:"ebook_id"`
	Reason  string `json:"reason,omitempty"`
}

func (e EbookRejectedEvent) Name() string        { return EventEbookRejected }
func (e EbookRejectedEvent) Header() EventHeader { return e.EventHeader }

// PageRegeneratedEvent is published when a single page is regenerated
// without replaying the rest of the pipeline.
type PageRegeneratedEvent struct {
	EventHeader
	RequestID  string `json:"request_id"`
	PageNumber int    `json:"page_number"`
}

func (e PageRegeneratedEvent) Name() string        { return EventPageRegenerated }
func (e PageRegeneratedEvent) Header() EventHeader { return e.EventHeader }

// ExportGeneratedEvent is published when an export variant of an approved
// book has been assembled.
type ExportGeneratedEvent struct {
	EventHeader
	EbookID     int64      `json:"ebook_id"`
	Export      ExportType `json:"export"`
	ArtifactURI string     `json:"artifact_uri"`
}

func (e ExportGeneratedEvent) Name() string        { return EventExportGenerated }
func (e ExportGeneratedEvent) Header() EventHeader { return e.EventHeader }
