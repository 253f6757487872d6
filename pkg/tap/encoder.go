package tap

import (
	"encoding/json"
	"fmt"
	"io"
)

// Encoder writes events as newline-delimited JSON, one object per event.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Encoder{enc: enc}
}

// Encode writes one event followed by a newline.
func (e *Encoder) Encode(ev Event) error {
	if err := e.enc.Encode(ev); err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Type(), err)
	}
	return nil
}
