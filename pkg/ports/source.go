package ports

import "context"

// DatasetSource yields the raw bytes of a schedule dataset.
type DatasetSource interface {
	// Fetch returns the current dataset document.
	Fetch(ctx context.Context) ([]byte, error)

	// Name returns the path or URL the dataset comes from.
	// Its extension selects the decoder.
	Name() string
}
