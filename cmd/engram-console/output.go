package main

import (
	"encoding/json"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"engram-console/internal/console"
)

// printer writes command results as JSON or as aligned, optionally
// colour-classified text.
type printer struct {
	out   io.Writer
	json  bool
	color bool
}

func newPrinter(cmd *cobra.Command) printer {
	out := cmd.OutOrStdout()
	return printer{out: out, json: jsonOut, color: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
}

// class renders s in the style of c when colour is enabled. Classified
// values go in the last column so escape codes do not skew alignment.
func (p printer) class(c console.Class, s string) string {
	if !p.color {
		return s
	}
	return c.Style().Render(s)
}
