package cmdutil

import (
	"encoding/json"
	"io"
)

// WriteJSON writes data as indented JSON. HTML characters are left as is so
// package names and error text stay readable.
func WriteJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
