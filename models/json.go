// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order. The backend emits naive ISO timestamps
// (no zone) which are treated as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Timestamp is a time.Time that tolerates zone-less timestamps.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

// MarshalYAML renders timestamps as RFC 3339 strings.
func (ts Timestamp) MarshalYAML() (interface{}, error) {
	if ts.IsZero() {
		return nil, nil
	}
	return ts.UTC().Format(time.RFC3339), nil
}

// RawDetail holds an error "detail" field, which is either a plain string or
// a list of {"loc": [...], "msg": "..."} objects.
type RawDetail struct {
	json.RawMessage
}

type fieldDetail struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

func (d *RawDetail) UnmarshalJSON(data []byte) error {
	d.RawMessage = append(d.RawMessage[:0], data...)
	return nil
}

func (d RawDetail) MarshalJSON() ([]byte, error) {
	if len(d.RawMessage) == 0 {
		return []byte("null"), nil
	}
	return d.RawMessage, nil
}

// Text flattens the detail into one human readable line.
func (d RawDetail) Text() string {
	if len(d.RawMessage) == 0 || bytes.Equal(d.RawMessage, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(d.RawMessage, &s); err == nil {
		return s
	}

	var fields []fieldDetail
	if err := json.Unmarshal(d.RawMessage, &fields); err == nil {
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.Msg == "" {
				continue
			}
			if name := lastLoc(f.Loc); name != "" {
				msgs = append(msgs, name+": "+f.Msg)
			} else {
				msgs = append(msgs, f.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(d.RawMessage)
}

func lastLoc(loc []interface{}) string {
	if len(loc) == 0 {
		return ""
	}
	if s, ok := loc[len(loc)-1].(string); ok && s != "body" {
		return s
	}
	return ""
}

// DetailString builds a RawDetail from a plain message.
func DetailString(msg string) RawDetail {
	b, _ := json.Marshal(msg)
	return RawDetail{RawMessage: b}
}

// Text returns the most specific message in the error body.
func (e ErrorResponse) Text() string {
	if s := e.Detail.Text(); s != "" {
		return s
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
