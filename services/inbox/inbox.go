// Package inbox clears the unread counters of the platform's message
// inboxes by sweeping their record feeds.
package inbox

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"

	"codemaobot/lib/codemao"
	"codemaobot/lib/jsonpath"
)

var tracer = otel.Tracer("services/inbox")

const (
	sweepPageSize = 200
	// maxSweeps bounds the sweep loop; a counter the platform refuses
	// to decrement would otherwise spin forever.
	maxSweeps = 100
)

var webQueryTypes = []string{"LIKE_FORK", "COMMENT_REPLY", "SYSTEM"}

var nemoCategories = []int{1, 3}

var nemoCountKeys = []string{
	"like_collection_count",
	"comment_count",
	"re_create_count",
	"system_count",
}

// Gateway is the slice of the platform client the engine needs.
type Gateway interface {
	WebMessageCounts(ctx context.Context) []codemao.RecordCount
	NemoMessageCounts(ctx context.Context) map[string]any
	TouchWebRecords(ctx context.Context, queryType string, limit, offset int) bool
	TouchNemoRecords(ctx context.Context, category, limit, offset int) bool
}

// Engine marks inbox messages read.
type Engine struct {
	gateway Gateway
}

func NewEngine(gateway Gateway) *Engine {
	return &Engine{gateway: gateway}
}

// MarkAllRead sweeps the selected inbox until its unread counters reach
// zero. Returns false when a page fetch failed or the counters never
// drained.
func (e *Engine) MarkAllRead(ctx context.Context, source codemao.Source) bool {
	ctx, span := tracer.Start(ctx, "engine:MarkAllRead")
	defer span.End()

	if source == codemao.SourceNemo {
		return e.sweepNemo(ctx)
	}
	return e.sweepWeb(ctx)
}

func (e *Engine) sweepWeb(ctx context.Context) bool {
	offset := 0
	for sweep := 0; sweep < maxSweeps; sweep++ {
		unread := 0
		for _, count := range e.gateway.WebMessageCounts(ctx) {
			for _, queryType := range webQueryTypes {
				if count.QueryType == queryType {
					unread += count.Count
				}
			}
		}
		if unread == 0 {
			return true
		}

		for _, queryType := range webQueryTypes {
			if !e.gateway.TouchWebRecords(ctx, queryType, sweepPageSize, offset) {
				slog.WarnContext(ctx, "inbox sweep page fetch failed",
					"source", "web",
					"query_type", queryType,
					"offset", offset,
				)
				return false
			}
		}
		offset += sweepPageSize
	}
	return false
}

func (e *Engine) sweepNemo(ctx context.Context) bool {
	offset := 0
	for sweep := 0; sweep < maxSweeps; sweep++ {
		counts := e.gateway.NemoMessageCounts(ctx)
		unread := 0
		for _, key := range nemoCountKeys {
			unread += jsonpath.Int(counts, key)
		}
		if unread == 0 {
			return true
		}

		for _, category := range nemoCategories {
			if !e.gateway.TouchNemoRecords(ctx, category, sweepPageSize, offset) {
				slog.WarnContext(ctx, "inbox sweep page fetch failed",
					"source", "nemo",
					"category", category,
					"offset", offset,
				)
				return false
			}
		}
		offset += sweepPageSize
	}
	return false
}
