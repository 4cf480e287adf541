package cmdutil

import (
	"encoding/json"
	"io"
)

// WriteJSON encodes data as indented JSON for --json output.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
