package driven

import "context"

// Recogniser is the external optical recognition capability: given an
// image, return recognized text and a language signal. Configured for a
// fixed language set; mixing language configurations across a corpus is
// the caller's responsibility to avoid.
type Recogniser interface {
	// Recognise runs OCR over the given image bytes.
	Recognise(ctx context.Context, image []byte) (*Recognition, error)

	// Languages returns the fixed language set the capability is
	// configured for (e.g. "fra+ara+eng").
	Languages() string

	// Ping validates the capability is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Recognition is the result of one OCR call.
type Recognition struct {
	// Text is the recognized text in reading order.
	Text string

	// Language is the language signal reported by the capability,
	// falling back to the configured set when absent.
	Language string

	// Confidence is the mean word confidence (0-100), -1 when unknown.
	Confidence float64
}
