package models

import (
	"encoding/json"
	"strconv"
)

// BaseFilter carries the pagination window for list queries. Inputs come
// from loosely-typed JSON payloads, so construction coerces what it can
// and silently falls back to defaults for anything out of range or
// non-numeric rather than erroring.
type BaseFilter struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

func NewBaseFilter(skip, limit any, defaultLimit, maxLimit int) BaseFilter {
	f := BaseFilter{Skip: 0, Limit: defaultLimit}
	if v, ok := coerceInt(skip); ok && v >= 0 {
		f.Skip = v
	}
	if v, ok := coerceInt(limit); ok && v > 0 {
		f.Limit = v
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

type MessageFilter struct {
	BaseFilter
	Room    int64
	Keyword string
}

type MemberFilter struct {
	BaseFilter
	Keyword string
	// MaxLevel bounds the visible role levels; participants at or above
	// it are operator identities and never listed.
	MaxLevel  int
	ExcludeID int64
}

// Pagination echoes the applied window plus the total match count back to
// the client.
type Pagination struct {
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type MessagePage struct {
	Pagination Pagination `json:"pagination"`
	Results    []*Message `json:"results"`
}

type MemberPage struct {
	Pagination Pagination `json:"pagination"`
	Results    []*Member  `json:"results"`
}
