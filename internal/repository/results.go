package repository

// RemoveResult is the outcome of a removal attempt. Result false means the
// record was left untouched; Messages carry the rejection reasons.
type RemoveResult[E Editable] struct {
	Result   bool     `json:"result"`
	Messages []string `json:"messages"`
	Value    E        `json:"value,omitempty"`
}

// ExportResult is a serialized snapshot of a queried record set.
type ExportResult struct {
	FileName  string `json:"fileName"`
	MediaType string `json:"mediaType"`
	Data      []byte `json:"data"`
}
