package book

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadInput decodes the [context, book] pair mdBook sends on stdin.
func ReadInput(r io.Reader) (*Context, *Book, error) {
	var pair []json.RawMessage
	if err := json.NewDecoder(r).Decode(&pair); err != nil {
		return nil, nil, fmt.Errorf("decoding preprocessor input: %w", err)
	}
	if len(pair) != 2 {
		return nil, nil, fmt.Errorf("decoding preprocessor input: expected [context, book], got %d elements", len(pair))
	}

	var ctx Context
	if err := json.Unmarshal(pair[0], &ctx); err != nil {
		return nil, nil, fmt.Errorf("decoding context: %w", err)
	}
	var b Book
	if err := json.Unmarshal(pair[1], &b); err != nil {
		return nil, nil, fmt.Errorf("decoding book: %w", err)
	}
	return &ctx, &b, nil
}

// WriteBook encodes the processed book for mdBook to read back.
func WriteBook(w io.Writer, b *Book) error {
	if err := json.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encoding book: %w", err)
	}
	return nil
}
