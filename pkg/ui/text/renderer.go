// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/myquest/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) (*Renderer, error) {
	return &Renderer{output: output}, nil
}

// RenderResult renders the view as an aligned plain table
func (r *Renderer) RenderResult(view *display.View) error {
	if view == nil {
		return nil
	}
	if view.Title != "" {
		if _, err := fmt.Fprintln(r.output, view.Title); err != nil {
			return err
		}
	}
	if len(view.Headers) > 0 || len(view.Rows) > 0 {
		tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
		if len(view.Headers) > 0 {
			if _, err := fmt.Fprintln(tw, strings.Join(view.Headers, "\t")); err != nil {
				return err
			}
		}
		for _, row := range view.Rows {
			if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if view.Message != "" {
		return r.RenderMessage(view.Message)
	}
	return nil
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
