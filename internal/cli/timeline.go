package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arthur-debert/myquest/pkg/app"
	"github.com/arthur-debert/myquest/pkg/codec"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/style"
	"github.com/arthur-debert/myquest/pkg/timeline"
	"github.com/arthur-debert/myquest/pkg/ui"
	"github.com/arthur-debert/myquest/pkg/ui/display"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newTimelineCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timeline",
		Short:   MsgTimelineShort,
		Example: MsgTimelineExample,
	}

	cmd.AddCommand(
		newTimelineListCmd(opts),
		newTimelineShowCmd(opts),
		newTimelineSelectCmd(opts),
		newTimelineAddPeriodCmd(opts),
		newTimelineDeletePeriodCmd(opts),
		newTimelineAddEventCmd(opts),
		newTimelineDeleteEventCmd(opts),
		newTimelineImportCmd(opts),
	)
	return cmd
}

func resolvePeriod(a *app.Context, input string) (uuid.UUID, error) {
	doc, err := a.Timeline.Current()
	if err != nil {
		return uuid.Nil, err
	}
	var known []uuid.UUID
	for _, p := range doc.LifePeriods {
		if p.ID != nil {
			known = append(known, *p.ID)
		}
	}
	return matchID("period", input, known)
}

func resolveEvent(a *app.Context, periodID uuid.UUID, input string) (uuid.UUID, error) {
	events, err := a.Timeline.PeriodEvents(periodID)
	if err != nil {
		return uuid.Nil, err
	}
	var known []uuid.UUID
	for _, e := range events {
		if e.ID != nil {
			known = append(known, *e.ID)
		}
	}
	return matchID("event", input, known)
}

func idOrEmpty(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return shortID(*id)
}

// swatch shows a colour sample on styled terminals and the hex value
// everywhere else
func swatch(color string, rich bool) string {
	if !rich {
		return color
	}
	return style.Swatch(color) + " " + color
}

func newTimelineListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored timelines",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			names, err := a.Timeline.Available()
			if err != nil {
				return err
			}
			current := a.Timeline.CurrentName()
			view := display.NewTable("Timelines", "", "Name")
			for _, name := range names {
				marker := ""
				if name == current {
					marker = "*"
				}
				view.AddRow(marker, name)
			}
			return r.RenderResult(view.WithData(map[string]interface{}{
				"current":   current,
				"timelines": names,
			}))
		}),
	}
}

func newTimelineShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the periods of the active timeline",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			doc, err := a.Timeline.Current()
			if err != nil {
				return err
			}

			rich := opts.rich(cmd)
			view := display.NewTable(fmt.Sprintf("Timeline %q", doc.Name), "ID", "Start", "Period", "Events", "Color")
			for _, p := range doc.LifePeriods {
				view.AddRow(idOrEmpty(p.ID), p.Start, p.Name, strconv.Itoa(len(p.Events)), swatch(p.Color, rich))
			}

			summary, err := timeline.Weeks(&doc, time.Now())
			if err != nil {
				return err
			}
			lines := []string{fmt.Sprintf(MsgWeeksSummary, summary.Lived, summary.Total, summary.Remaining)}
			if summary.Current != nil {
				lines = append(lines, fmt.Sprintf(MsgCurrentPeriod, summary.Current.Name))
			}
			return r.RenderResult(view.WithMessage(strings.Join(lines, "\n")).WithData(doc))
		}),
	}
}

func newTimelineSelectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select <name>",
		Short: "Switch to a timeline, creating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			doc, err := a.SelectTimeline(contextOf(cmd), args[0])
			if err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(MsgTimelineSwitch, args[0])).WithData(doc))
		}),
	}
}

func newTimelineAddPeriodCmd(opts *rootOptions) *cobra.Command {
	var start, color string

	cmd := &cobra.Command{
		Use:   "add-period <name>",
		Short: "Add a life period to the active timeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			p := timeline.Period{
				Name:  strings.Join(args, " "),
				Start: start,
				Color: color,
			}
			id, err := a.Timeline.AddPeriod(p)
			if err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(MsgPeriodCreated, p.Name, shortID(id))).
				WithData(map[string]string{"id": id.String()}))
		}),
	}

	cmd.Flags().StringVar(&start, "start", time.Now().Format("2006-01"), MsgFlagStart+" (YYYY-MM)")
	cmd.Flags().StringVar(&color, "color", defaultColor, MsgFlagColor)
	return cmd
}

func newTimelineDeletePeriodCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-period <period-id>",
		Short: "Delete a period and its events",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			id, err := resolvePeriod(a, args[0])
			if err != nil {
				return err
			}
			if err := a.Timeline.DeletePeriod(id); err != nil {
				return err
			}
			return r.RenderResult(display.Message("Deleted period " + shortID(id)))
		}),
	}
}

func newTimelineAddEventCmd(opts *rootOptions) *cobra.Command {
	var start, color string

	cmd := &cobra.Command{
		Use:   "add-event <period-id> <name>",
		Short: "Add an event to a period",
		Args:  cobra.MinimumNArgs(2),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			periodID, err := resolvePeriod(a, args[0])
			if err != nil {
				return err
			}
			e := timeline.Event{
				Name:  strings.Join(args[1:], " "),
				Start: start,
				Color: color,
			}
			id, err := a.Timeline.AddEvent(periodID, e)
			if err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(MsgEventCreated, e.Name, shortID(id))).
				WithData(map[string]string{"id": id.String(), "period": periodID.String()}))
		}),
	}

	cmd.Flags().StringVar(&start, "start", time.Now().Format("2006-01-02"), MsgFlagStart+" (YYYY-MM-DD)")
	cmd.Flags().StringVar(&color, "color", defaultColor, MsgFlagColor)
	return cmd
}

func newTimelineDeleteEventCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-event <period-id> <event-id>",
		Short: "Delete an event from a period",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			periodID, err := resolvePeriod(a, args[0])
			if err != nil {
				return err
			}
			eventID, err := resolveEvent(a, periodID, args[1])
			if err != nil {
				return err
			}
			if err := a.Timeline.DeleteEvent(periodID, eventID); err != nil {
				return err
			}
			return r.RenderResult(display.Message("Deleted event " + shortID(eventID)))
		}),
	}
}

func newTimelineImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the active timeline with a JSON, YAML or TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			c, err := codec.ForPath(args[0])
			if err != nil {
				return err
			}
			data, err := a.FS.ReadFile(args[0])
			if err != nil {
				return errors.Wrap(err, errors.ErrIO, "failed to read timeline file").WithDetail("path", args[0])
			}
			var doc timeline.Document
			if err := c.Decode(data, &doc); err != nil {
				return err
			}
			if err := a.Timeline.Replace(doc); err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf("Imported %d periods into %q",
				len(doc.LifePeriods), a.Timeline.CurrentName())))
		}),
	}
}
