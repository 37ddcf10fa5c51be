package snapshot

import (
	"time"

	"github.com/tidwall/gjson"

	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// Parse normalizes a raw monitor response body into a Snapshot.
//
// Normalization is deliberately tolerant: missing fields become zero
// values, timestamps accept fractional Unix seconds (as numbers or
// numeric strings) as well as date strings, and session entries without
// a session_id are skipped and counted rather than failing the whole
// snapshot. Only a body that is not JSON at all is an error.
func Parse(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	root := gjson.ParseBytes(data)

	snap := &Snapshot{
		FetchedAt: time.Now(),
	}

	root.Get("sessions").ForEach(func(_, item gjson.Result) bool {
		sess, ok := parseSession(item)
		if !ok {
			snap.Skipped++
			return true
		}
		snap.Sessions = append(snap.Sessions, sess)
		return true
	})

	if svc := root.Get("service"); svc.Exists() {
		snap.Service = parseService(svc)
	}

	root.Get("tool_stats").ForEach(func(_, item gjson.Result) bool {
		name := item.Get("tool").String()
		if name == "" {
			return true
		}
		snap.ToolStats = append(snap.ToolStats, ToolStat{
			Tool:  name,
			Calls: int(item.Get("calls").Int()),
		})
		return true
	})

	snap.System = parseMetricMap(root.Get("system"))
	snap.Sandbox = parseMetricMap(root.Get("sandbox"))

	return snap, nil
}

// parseSession normalizes one session entry. ok is false when the entry
// has no session_id.
func parseSession(item gjson.Result) (Session, bool) {
	id := item.Get("session_id").String()
	if id == "" {
		return Session{}, false
	}

	return Session{
		ID:          id,
		UserID:      item.Get("user_id").String(),
		Status:      item.Get("status").String(),
		TokenUsage:  item.Get("token_usage").Int(),
		StartTime:   parseWireTime(item.Get("start_time")),
		UpdatedTime: parseWireTime(item.Get("updated_time")),
		ElapsedSec:  item.Get("elapsed_s").Float(),
		Stage:       item.Get("stage").String(),
		Question:    item.Get("question").String(),
	}, true
}

// parseService normalizes the service counter block.
func parseService(svc gjson.Result) Service {
	return Service{
		ActiveSessions:    int(svc.Get("active_sessions").Int()),
		HistorySessions:   int(svc.Get("history_sessions").Int()),
		FinishedSessions:  int(svc.Get("finished_sessions").Int()),
		ErrorSessions:     int(svc.Get("error_sessions").Int()),
		CancelledSessions: int(svc.Get("cancelled_sessions").Int()),
		TotalSessions:     int(svc.Get("total_sessions").Int()),
		RecentCompleted:   int(svc.Get("recent_completed").Int()),
		AvgElapsedSec:     svc.Get("avg_elapsed_s").Float(),
		AvgPrefillTPS:     svc.Get("avg_prefill_speed_tps").Float(),
		AvgDecodeTPS:      svc.Get("avg_decode_speed_tps").Float(),
	}
}

// parseMetricMap flattens an optional object of numeric metrics.
// Non-numeric members are ignored.
func parseMetricMap(obj gjson.Result) map[string]float64 {
	if !obj.Exists() || !obj.IsObject() {
		return nil
	}

	metrics := make(map[string]float64)
	obj.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Number {
			metrics[key.String()] = value.Float()
		}
		return true
	})

	if len(metrics) == 0 {
		return nil
	}
	return metrics
}

// parseWireTime normalizes a wire timestamp field.
//
// Numbers are fractional Unix seconds. Strings are tried first as
// numeric seconds, then as date strings. Anything else is the zero time.
func parseWireTime(r gjson.Result) time.Time {
	switch r.Type {
	case gjson.Number:
		secs := r.Float()
		if secs <= 0 {
			return time.Time{}
		}
		return timewindow.FromUnixSeconds(secs)

	case gjson.String:
		if t, ok := timewindow.ParseTime(r.String()); ok {
			return t
		}
		return time.Time{}

	default:
		return time.Time{}
	}
}
