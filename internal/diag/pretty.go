package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Pretty writes each diagnostic as
//
//	error[SIG1001]: message
//	  --> file: fn name: statement 3
//	  note: text
//
// Colors are used only when useColor is set.
func Pretty(w io.Writer, diags []Diagnostic, useColor bool) error {
	paint := func(c *color.Color) *color.Color {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	arrow := paint(color.New(color.FgBlue, color.Bold))
	note := paint(color.New(color.FgGreen))

	for _, d := range diags {
		head := paint(d.Severity.color())
		if _, err := fmt.Fprintf(w, "%s: %s\n", head.Sprintf("%s[%s]", d.Severity, d.Code.ID()), d.Message); err != nil {
			return err
		}
		if loc := d.Primary.String(); loc != "" {
			if _, err := fmt.Fprintf(w, "  %s %s\n", arrow.Sprint("-->"), loc); err != nil {
				return err
			}
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  %s %s\n", note.Sprint("note:"), n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}
