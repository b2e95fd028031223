// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/copycheck/pkg/types"
)

// rawVerdict mirrors the expected object; pointer fields distinguish a
// missing field from a zero value.
type rawVerdict struct {
	Score   *float64 `json:"score"`
	Verdict *string  `json:"verdict"`
	Reason  *string  `json:"reason"`
}

var validVerdicts = map[types.Verdict]bool{
	types.VerdictCopied:      true,
	types.VerdictParaphrased: true,
	types.VerdictDifferent:   true,
}

// ParseVerdict extracts the first well-formed JSON object from a model
// response (which may be wrapped in prose or code fences) and validates it.
// It returns either a complete verdict or a *ParseError.
func ParseVerdict(raw string) (types.SemanticVerdict, error) {
	obj, ok := firstJSONObject(raw)
	if !ok {
		return types.SemanticVerdict{}, &ParseError{Reason: "no JSON object found in response"}
	}

	var rv rawVerdict
	if err := json.Unmarshal(obj, &rv); err != nil {
		return types.SemanticVerdict{}, &ParseError{Reason: fmt.Sprintf("decoding verdict: %v", err)}
	}

	switch {
	case rv.Score == nil:
		return types.SemanticVerdict{}, &ParseError{Reason: "missing field \"score\""}
	case rv.Verdict == nil:
		return types.SemanticVerdict{}, &ParseError{Reason: "missing field \"verdict\""}
	case rv.Reason == nil:
		return types.SemanticVerdict{}, &ParseError{Reason: "missing field \"reason\""}
	}

	if *rv.Score < 0 || *rv.Score > 100 {
		return types.SemanticVerdict{}, &ParseError{Reason: fmt.Sprintf("score %v out of range [0,100]", *rv.Score)}
	}

	verdict := types.Verdict(strings.ToLower(strings.TrimSpace(*rv.Verdict)))
	if !validVerdicts[verdict] {
		return types.SemanticVerdict{}, &ParseError{Reason: fmt.Sprintf("invalid verdict %q", *rv.Verdict)}
	}

	return types.SemanticVerdict{
		Score:   *rv.Score,
		Verdict: verdict,
		Reason:  strings.TrimSpace(*rv.Reason),
	}, nil
}

// firstJSONObject scans s for '{' and returns the first complete JSON
// object that decodes from that offset.
func firstJSONObject(s string) (json.RawMessage, bool) {
	for i := strings.IndexByte(s, '{'); i >= 0; {
		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var msg json.RawMessage
		if err := dec.Decode(&msg); err == nil {
			return msg, true
		}
		next := strings.IndexByte(s[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}
	return nil, false
}
