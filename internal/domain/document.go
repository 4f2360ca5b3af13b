package domain

import "time"

// DocumentKind distinguishes text-based order confirmations from binary
// attachments (PDF).
type DocumentKind string

const (
	KindText   DocumentKind = "text"
	KindBinary DocumentKind = "binary"
)

// RawDocument is the immutable pipeline input, produced by the ingress
// collaborator. Content holds decoded text for KindText and the raw byte
// payload for KindBinary.
type RawDocument struct {
	VendorHint string       `json:"vendorHint"`
	Kind       DocumentKind `json:"kind"`
	Content    []byte       `json:"content"`
	ReceivedAt time.Time    `json:"receivedAt"`
}

// OrderHeader holds the order-level fields extracted from a document's
// header block.
type OrderHeader struct {
	OrderNumber   string `json:"orderNumber"`
	AccountNumber string `json:"accountNumber"`
	CustomerName  string `json:"customerName"`
	OrderDate     string `json:"orderDate"`
}

// ExtractedLineItem is one candidate product line reconstructed from the
// document. Immutable after extraction, except Brand which may be
// overwritten by the catalog brand once a validated match is found.
type ExtractedLineItem struct {
	SourceLineNumber int    `json:"sourceLineNumber"`
	RawText          string `json:"rawText"`
	Brand            string `json:"brand"`
	Model            string `json:"model"`
	ColorCode        string `json:"colorCode"`
	ColorName        string `json:"colorName"`
	EyeSize          string `json:"eyeSize"`
	Bridge           string `json:"bridge"`
	TempleLength     string `json:"templeLength"`
	Quantity         int    `json:"quantity"`
}

// EnrichedItem is the pipeline's terminal output unit: the extracted
// fields, the validation verdict, and the denormalized catalog fields of
// the chosen variant.
type EnrichedItem struct {
	ExtractedLineItem

	Match MatchResult `json:"match"`

	UPC             string  `json:"upc,omitempty"`
	SKU             string  `json:"sku,omitempty"`
	Wholesale       float64 `json:"wholesale,omitempty"`
	SuggestedRetail float64 `json:"suggestedRetail,omitempty"`
	InStock         bool    `json:"inStock"`
}

// RunState tracks the orchestrator's progress through one pipeline run.
type RunState string

const (
	StateReceived  RunState = "received"
	StateExtracted RunState = "extracted"
	StateEnriching RunState = "enriching"
	StateCompleted RunState = "completed"
	StateFailed    RunState = "failed"
)

// RunStatistics aggregates counters for one pipeline run. Mutated
// incrementally during the run and frozen at completion.
type RunStatistics struct {
	RunID          string        `json:"runId"`
	VendorHint     string        `json:"vendorHint"`
	TotalItems     int           `json:"totalItems"`
	ValidatedItems int           `json:"validatedItems"`
	FailedItems    int           `json:"failedItems"`
	APIErrors      int64         `json:"apiErrors"`
	StartedAt      time.Time     `json:"startedAt"`
	Duration       time.Duration `json:"duration"`
	ItemsPerSecond float64       `json:"itemsPerSecond"`
	Reason         string        `json:"reason,omitempty"`
}

// PipelineResult is the output contract handed to the persistence
// collaborator.
type PipelineResult struct {
	RunID  string         `json:"runId"`
	State  RunState       `json:"state"`
	Header OrderHeader    `json:"header"`
	Items  []EnrichedItem `json:"items"`
	Stats  RunStatistics  `json:"statistics"`
}
