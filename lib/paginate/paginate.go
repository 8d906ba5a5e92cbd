// Package paginate turns the platform's cursor-less list endpoints into
// fully materialized result sets. One probe request discovers the total,
// then pages are fetched sequentially; a failed page is skipped rather
// than retried, trading completeness for availability against a flaky
// unofficial API.
package paginate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"codemaobot/lib/jsonpath"
)

// Mode selects how the pagination cursor is derived from the page index.
type Mode int

const (
	// ModeOffset sets the cursor to page_index * page_size.
	ModeOffset Mode = iota
	// ModePage sets the cursor to page_index + 1.
	ModePage
)

// ParseMode decodes a mode literal at the configuration boundary.
// Invalid literals are rejected before any request is made.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "offset":
		return ModeOffset, nil
	case "page":
		return ModePage, nil
	}
	return 0, fmt.Errorf("paginate: unsupported pagination mode %q", s)
}

// Executor issues a single request against the platform. A transport
// failure is reported as a nil document with a nil error: the engine
// treats it as "no data for this call" rather than a hard stop.
type Executor interface {
	Execute(ctx context.Context, endpoint, method string, query map[string]string, body any) (map[string]any, error)
}

// Request describes one paginated fetch.
type Request struct {
	Endpoint string
	// Method defaults to GET.
	Method string
	// Query holds the caller's initial parameters; the engine works on
	// a copy, the caller's map is never mutated.
	Query map[string]string
	// TotalPath is the dot-separated path to the total count in the
	// probe response. Defaults to "total".
	TotalPath string
	// ItemsPath is the dot-separated path to the item list in each page
	// response. Defaults to "items".
	ItemsPath string
	Mode      Mode
	// AmountKey is the query parameter carrying the page size.
	// Defaults to "limit".
	AmountKey string
	// CursorKey is the query parameter carrying the cursor.
	// Defaults to "offset".
	CursorKey string
	// ResponseAmountKey is the fallback path for the page size in the
	// probe response body, used when AmountKey is absent from Query.
	// Defaults to AmountKey.
	ResponseAmountKey string
	// Limit caps the number of returned items. 0 means no cap.
	Limit int
	// FailFast aborts the whole fetch on the first failed request
	// instead of skipping the page. Off by default.
	FailFast bool
}

func (r *Request) applyDefaults() {
	if r.Method == "" {
		r.Method = "GET"
	}
	if r.TotalPath == "" {
		r.TotalPath = "total"
	}
	if r.ItemsPath == "" {
		r.ItemsPath = "items"
	}
	if r.AmountKey == "" {
		r.AmountKey = "limit"
	}
	if r.CursorKey == "" {
		r.CursorKey = "offset"
	}
	if r.ResponseAmountKey == "" {
		r.ResponseAmountKey = r.AmountKey
	}
}

// FetchAll materializes every page of a list endpoint in server order.
//
// The page size is resolved once, from the request parameters or the
// probe response, and held fixed for the remainder of the fetch. With
// FailFast off (the default) transport failures never surface as
// errors: a failed probe yields an empty result and a failed page
// yields a partial one.
func FetchAll(ctx context.Context, exec Executor, req Request) ([]map[string]any, error) {
	req.applyDefaults()

	query := make(map[string]string, len(req.Query)+1)
	for k, v := range req.Query {
		query[k] = v
	}

	probe, err := exec.Execute(ctx, req.Endpoint, req.Method, query, nil)
	if err != nil || probe == nil {
		if req.FailFast {
			if err == nil {
				err = fmt.Errorf("paginate: probe request for %s failed", req.Endpoint)
			}
			return nil, err
		}
		slog.WarnContext(ctx, "probe request failed, returning empty result", "endpoint", req.Endpoint)
		return nil, nil
	}

	total := jsonpath.Int(probe, req.TotalPath)
	if total == 0 {
		return nil, nil
	}

	pageSize := 0
	if raw, ok := query[req.AmountKey]; ok {
		pageSize, _ = strconv.Atoi(raw)
	}
	if pageSize == 0 {
		pageSize = jsonpath.Int(probe, req.ResponseAmountKey)
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("paginate: could not resolve page size for %s", req.Endpoint)
	}

	pageCount := (total + pageSize - 1) / pageSize

	var all []map[string]any
	for page := 0; page < pageCount; page++ {
		switch req.Mode {
		case ModeOffset:
			query[req.CursorKey] = strconv.Itoa(page * pageSize)
		case ModePage:
			query[req.CursorKey] = strconv.Itoa(page + 1)
		}

		res, err := exec.Execute(ctx, req.Endpoint, req.Method, query, nil)
		if err != nil || res == nil {
			if req.FailFast {
				if err == nil {
					err = fmt.Errorf("paginate: page %d of %s failed", page, req.Endpoint)
				}
				return nil, err
			}
			slog.WarnContext(ctx, "page request failed, skipping",
				"endpoint", req.Endpoint,
				"page", page,
			)
			continue
		}

		for _, item := range jsonpath.Slice(res, req.ItemsPath) {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			all = append(all, m)
			if req.Limit > 0 && len(all) >= req.Limit {
				return all, nil
			}
		}
	}

	return all, nil
}
