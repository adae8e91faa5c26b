package types

// Document is a retrieved context fragment with its source metadata.
// It is the unit of exchange with the retrieval store.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
