// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"bytes"
	"text/template"
)

// verificationPromptTmpl instructs the model to compare two excerpts and
// answer with a single JSON object.
var verificationPromptTmpl = template.Must(template.New("verification").Parse(`You are an academic integrity reviewer. Compare the SUBMITTED text with the SOURCE text and decide how the submission relates to the source.

Judge meaning, not wording:
- "copied": the submission reproduces the source, possibly with trivial edits
- "paraphrased": the submission restates the source's ideas and structure in different words
- "different": the submission was written independently; shared vocabulary alone is not copying

Respond with a single JSON object and nothing else:
{"score": <number 0-100, how much of the submission is derived from the source>, "verdict": "copied" | "paraphrased" | "different", "reason": "<one or two sentences>"}

SOURCE:
"""
{{.Source}}
"""

SUBMITTED:
"""
{{.Target}}
"""
`))

// renderPrompt truncates both excerpts to maxChars runes and executes the template.
func renderPrompt(target, source string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	var buf bytes.Buffer
	err := verificationPromptTmpl.Execute(&buf, struct{ Target, Source string }{
		Target: Truncate(target, maxChars),
		Source: Truncate(source, maxChars),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
