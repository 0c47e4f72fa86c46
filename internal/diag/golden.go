package diag

import (
	"fmt"
	"sort"
	"strings"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Loc      Location
	Message  string
}

// FormatShortDiagnostics renders diagnostics one per line in a stable order,
// for tests and the --format=short CLI output.
func FormatShortDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = append(rendered, shortDiagnostic{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Loc:      d.Primary,
			Message:  sanitizeMessage(d.Message),
		})
		if includeNotes {
			for _, n := range d.Notes {
				rendered = append(rendered, shortDiagnostic{
					Severity: "note",
					Code:     d.Code.ID(),
					Loc:      n.Loc,
					Message:  sanitizeMessage(n.Msg),
				})
			}
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Loc.File != dj.Loc.File {
			return di.Loc.File < dj.Loc.File
		}
		if di.Loc.Function != dj.Loc.Function {
			return di.Loc.Function < dj.Loc.Function
		}
		if di.Loc.Statement != dj.Loc.Statement {
			return di.Loc.Statement < dj.Loc.Statement
		}
		return false
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity, d.Code, shortLocation(d.Loc), d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// shortLocation is file:function#statement with missing parts left out.
func shortLocation(l Location) string {
	out := l.File
	if l.Function != "" {
		if out != "" {
			out += ":"
		}
		out += l.Function
	}
	if l.Statement >= 0 {
		out += fmt.Sprintf("#%d", l.Statement)
	}
	if out == "" {
		return "-"
	}
	return out
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
