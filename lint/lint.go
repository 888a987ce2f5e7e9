// Copyright 2024 Rain Language
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lint classifies and renders the problems of a parsed dotrain
// document for reporting: each error code maps to a severity and the
// combined problem list can be written as text or JSON.
package lint

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rainlanguage/dotrain/ast"
	"github.com/rainlanguage/dotrain/parse"
	"github.com/rainlanguage/dotrain/scan"
)

// Severity levels for reported problems.
type Severity int

const (
	// SeverityInfo is for findings that may not block composition.
	SeverityInfo Severity = iota
	// SeverityWarning is for findings that likely indicate a mistake.
	SeverityWarning
	// SeverityError is for findings that definitely block composition.
	SeverityError
)

// String returns the human-readable name of a severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes severity as a JSON string.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ParseSeverity parses a severity string. Returns SeverityInfo if
// unrecognized.
func ParseSeverity(s string) Severity {
	switch s {
	case "warning":
		return SeverityWarning
	case "error":
		return SeverityError
	default:
		return SeverityInfo
	}
}

// Classify maps an error code to its severity. Odd length hex values,
// unterminated comments and duplicate import statements are warnings;
// every other code is an error. The composer refuses a document or
// binding with problems of either severity.
func Classify(code ast.ErrorCode) Severity {
	switch code {
	case ast.OddLenHex, ast.UnexpectedEndOfComment, ast.DuplicateImportStatement:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Finding is one rendered problem.
type Finding struct {
	File     string      `json:"file,omitempty"`
	Severity Severity    `json:"severity"`
	Code     string      `json:"code"`
	Line     int         `json:"line"`
	Column   int         `json:"column"`
	Message  string      `json:"message"`
	Position ast.Offsets `json:"position"`
}

// Findings collects a document's top level and binding problems into
// renderable findings, positions resolved to line and column.
func Findings(file string, doc *parse.RainDocument) []Finding {
	var out []Finding
	for _, p := range doc.AllProblems() {
		line := scan.LineNumber(doc.Text, p.Position[0])
		lineStart := 0
		for i := p.Position[0] - 1; i >= 0; i-- {
			if doc.Text[i] == '\n' {
				lineStart = i + 1
				break
			}
		}
		out = append(out, Finding{
			File:     file,
			Severity: Classify(p.Code),
			Code:     p.Code.String(),
			Line:     line + 1,
			Column:   p.Position[0] - lineStart,
			Message:  p.Msg,
			Position: p.Position,
		})
	}
	return out
}

// FormatText writes findings in human-readable text format.
func FormatText(w io.Writer, findings []Finding) {
	for _, f := range findings {
		loc := f.File
		if loc == "" {
			loc = "<stdin>"
		}
		fmt.Fprintf(w, "%s:%d:%d: [%s] %s\n", loc, f.Line, f.Column, f.Severity, f.Message)
	}
}

// FormatJSON writes findings in JSON format.
func FormatJSON(w io.Writer, findings []Finding) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	// an empty array rather than null for zero findings
	if findings == nil {
		findings = []Finding{}
	}
	return enc.Encode(findings)
}

// Worst returns the highest severity among findings.
func Worst(findings []Finding) Severity {
	if len(findings) == 0 {
		return SeverityInfo
	}
	worst := SeverityInfo
	for _, f := range findings {
		if f.Severity > worst {
			worst = f.Severity
		}
	}
	return worst
}
