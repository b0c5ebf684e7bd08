package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// envelopeOut is the structured `{ok, error?, data?, next_cursor?}` shape
// mandated by spec.md 6 for --json output.
type envelopeOut struct {
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	Data       any    `json:"data,omitempty"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func emitJSON(data any, nextCursor string) {
	out := envelopeOut{OK: true, Data: data, NextCursor: nextCursor}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func emitJSONError(err error) {
	out := envelopeOut{OK: false, Error: err.Error()}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func emitText(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}
