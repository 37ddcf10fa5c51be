package display

import (
	"encoding/json"
	"io"

	"github.com/0xmhha/telemetry-monitor/pkg/engine"
)

// jsonFormatter renders views as indented JSON.
type jsonFormatter struct {
	config Config
}

// FormatViews implements Formatter.FormatViews.
func (f *jsonFormatter) FormatViews(w io.Writer, v engine.Views) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
