package display

import (
	"fmt"
	"io"

	"github.com/0xmhha/telemetry-monitor/pkg/engine"
)

// simpleFormatter renders plain text, suitable for pipes and logs.
type simpleFormatter struct {
	config Config
}

// FormatViews implements Formatter.FormatViews.
func (f *simpleFormatter) FormatViews(w io.Writer, v engine.Views) error {
	if !v.FetchedAt.IsZero() {
		if _, err := fmt.Fprintf(w, "fetched: %s\n", v.FetchedAt.Format("2006-01-02 15:04:05")); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "status: active=%d finished=%d failed=%d cancelled=%d total=%d\n",
		v.Status.Active, v.Status.Finished, v.Status.Error, v.Status.Cancelled, v.Status.Total()); err != nil {
		return err
	}

	for i, label := range v.Trend.Labels {
		var value int64
		if i < len(v.Trend.Values) {
			value = v.Trend.Values[i]
		}
		if _, err := fmt.Fprintf(w, "trend %s %d\n", label, value); err != nil {
			return err
		}
	}

	for _, tile := range v.Tools {
		if _, err := fmt.Fprintf(w, "tool %s calls=%d category=%s\n",
			tile.Name, tile.Calls, tile.Category); err != nil {
			return err
		}
	}

	for _, s := range v.Active.Items {
		if _, err := fmt.Fprintf(w, "active %s user=%s tokens=%d\n",
			s.ID, s.UserID, s.TokenUsage); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "active page %d/%d, history page %d/%d\n",
		v.Active.Current, v.Active.TotalPages,
		v.History.Current, v.History.TotalPages)
	return err
}
