// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/style"
	"github.com/arthur-debert/myquest/pkg/ui/display"
	"github.com/pterm/pterm"
)

// Renderer provides rich terminal output with pterm tables and the
// lipgloss palette from pkg/style
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{output: w}, nil
}

// RenderResult renders the view with a styled title and a boxed table
func (r *Renderer) RenderResult(view *display.View) error {
	if view == nil {
		return nil
	}
	if view.Title != "" {
		if _, err := fmt.Fprintln(r.output, style.TitleStyle.Render(view.Title)); err != nil {
			return err
		}
	}
	if len(view.Rows) > 0 || len(view.Headers) > 0 {
		data := pterm.TableData{}
		table := pterm.DefaultTable.WithBoxed(true)
		if len(view.Headers) > 0 {
			data = append(data, view.Headers)
			table = table.WithHasHeader(true)
		}
		data = append(data, view.Rows...)

		out, err := table.WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to render table")
		}
		if _, err := fmt.Fprintln(r.output, out); err != nil {
			return err
		}
	}
	if view.Message != "" {
		return r.RenderMessage(view.Message)
	}
	return nil
}

// RenderError renders an error with appropriate formatting
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, style.ErrorStyle.Render("Error: ")+err.Error())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, style.InfoStyle.Render(msg))
	return err
}
