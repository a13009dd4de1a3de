package logger

import "strings"

var allowedStatus = map[string]bool{
	"ok":           true,
	"fail":         true,
	"skip":         true,
	"retry":        true,
	"rate_limited": true,
	"cancelled":    true,
}

var allowedOutcome = map[string]bool{
	"ok":           true,
	"fail":         true,
	"cancelled":    true,
	"rate_limited": true,
}

// Lines start with these keys in this order; the rest follow sorted.
var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"update_id",
	"user_id",
	"chat_id",
	"chat_type",
	"handler",
	"op",
	"cb_key",
	"outcome",
	"duration_ms",
	"txn_type",
	"step",
	"action",
	"preset",
	"backend",
	"collection",
	"record_id",
	"records_shown",
	"records_total",
	"messages",
	"kb",
	"mode",
	"http_code",
	"db",
	"host",
	"err",
	"err_code",
	"retryable",
	"payload",
}

// normalizeEnums lowercases status and drops an outcome outside the allowed set.
// Unknown statuses are kept so they remain visible.
func normalizeEnums(fields map[string]any) {
	if s, ok := fields["status"].(string); ok {
		if v := strings.ToLower(strings.TrimSpace(s)); allowedStatus[v] {
			fields["status"] = v
		}
	}
	if o, ok := fields["outcome"].(string); ok {
		if v := strings.ToLower(strings.TrimSpace(o)); allowedOutcome[v] {
			fields["outcome"] = v
		} else {
			delete(fields, "outcome")
		}
	}
}
