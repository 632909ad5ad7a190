package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"caselens/internal/analysis"
)

// decodeOutput parses the engine's free text as an EngineOutput. Strict parse
// first; on failure, fall back to the substring between the first '{' and the
// last '}'. The fallback is a deliberate tolerance for engines that wrap
// structured output in explanatory prose despite being told not to.
func decodeOutput(raw string) (*analysis.EngineOutput, error) {
	raw = strings.TrimSpace(raw)

	var out analysis.EngineOutput
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return &out, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
	}
	out = analysis.EngineOutput{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return &out, nil
}
