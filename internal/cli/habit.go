package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/myquest/pkg/app"
	"github.com/arthur-debert/myquest/pkg/habits"
	"github.com/arthur-debert/myquest/pkg/style"
	"github.com/arthur-debert/myquest/pkg/ui"
	"github.com/arthur-debert/myquest/pkg/ui/display"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultColor = "#4A90D9"

// habitRow is the JSON shape of a listed habit
type habitRow struct {
	ID uuid.UUID `json:"id"`
	habits.Habit
	Streak int `json:"streak"`
}

func newHabitCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "habit",
		Aliases: []string{"habits"},
		Short:   MsgHabitShort,
		Example: MsgHabitExample,
	}

	cmd.AddCommand(
		newHabitListCmd(opts),
		newHabitAddCmd(opts),
		newHabitMarkCmd(opts, true),
		newHabitMarkCmd(opts, false),
		newHabitDeleteCmd(opts),
		newHabitStreakCmd(opts),
	)
	return cmd
}

func resolveHabit(a *app.Context, input string) (uuid.UUID, error) {
	entries, err := a.Habits.List()
	if err != nil {
		return uuid.Nil, err
	}
	known := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		known[i] = e.ID
	}
	return matchID("habit", input, known)
}

// weekGrid draws the habit's current week, one cell per day
func weekGrid(h habits.Habit, today habits.Date, rich bool) string {
	start := today.AddDays(-h.WeekStart.DaysFromStart(today))
	var b strings.Builder
	for i := 0; i < 7; i++ {
		day := start.AddDays(i)
		switch {
		case today.Before(day):
			b.WriteString("·")
		case h.Completed(day):
			if rich {
				b.WriteString(style.Colored(h.Color, "■"))
			} else {
				b.WriteString("x")
			}
		default:
			b.WriteString("-")
		}
	}
	return b.String()
}

func newHabitListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits with this week's progress",
		Args:  cobra.NoArgs,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			entries, err := a.Habits.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return r.RenderResult(display.Message(MsgNoHabits).WithData([]habitRow{}))
			}

			today := habits.Today()
			rich := opts.rich(cmd)
			view := display.NewTable("Habits", "ID", "Title", "Week", "Streak", "Started", "Week start")
			rows := make([]habitRow, 0, len(entries))
			for _, e := range entries {
				streak, err := a.Habits.Streak(e.ID, today)
				if err != nil {
					return err
				}
				view.AddRow(shortID(e.ID), e.Title, weekGrid(e.Habit, today, rich),
					strconv.Itoa(streak), e.StartDate.String(), e.WeekStart.String())
				rows = append(rows, habitRow{ID: e.ID, Habit: e.Habit, Streak: streak})
			}
			return r.RenderResult(view.WithData(rows))
		}),
	}
}

func newHabitAddCmd(opts *rootOptions) *cobra.Command {
	var start, weekStart, color string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a habit",
		Args:  cobra.MinimumNArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			h := habits.Habit{
				Title: strings.Join(args, " "),
				Color: color,
			}
			ws, err := habits.ParseWeekStart(weekStart)
			if err != nil {
				return err
			}
			h.WeekStart = ws
			if start != "" {
				h.StartDate, err = habits.ParseDate(start)
				if err != nil {
					return err
				}
			}

			id, err := a.Habits.Create(h)
			if err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(MsgHabitCreated, h.Title, shortID(id))).
				WithData(map[string]string{"id": id.String()}))
		}),
	}

	cmd.Flags().StringVar(&start, "start", "", MsgFlagStart+" (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&weekStart, "week-start", habits.Monday.String(), MsgFlagWeekStart)
	cmd.Flags().StringVar(&color, "color", defaultColor, MsgFlagColor)
	return cmd
}

func newHabitMarkCmd(opts *rootOptions, mark bool) *cobra.Command {
	use, short, msg := "mark", "Mark a habit done on a day (default today)", MsgHabitMarked
	if !mark {
		use, short, msg = "unmark", "Remove a completed day from a habit", MsgHabitUnmarked
	}

	return &cobra.Command{
		Use:   use + " <id> [YYYY-MM-DD]",
		Short: short,
		Args:  cobra.RangeArgs(1, 2),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			id, err := resolveHabit(a, args[0])
			if err != nil {
				return err
			}
			day := habits.Today()
			if len(args) == 2 {
				if day, err = habits.ParseDate(args[1]); err != nil {
					return err
				}
			}

			if mark {
				err = a.Habits.MarkDay(id, day)
			} else {
				err = a.Habits.UnmarkDay(id, day)
			}
			if err != nil {
				return err
			}

			h, err := a.Habits.Get(id)
			if err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(msg, h.Title, day)).
				WithData(habitRow{ID: id, Habit: h}))
		}),
	}
}

func newHabitDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a habit",
		Args:    cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			id, err := resolveHabit(a, args[0])
			if err != nil {
				return err
			}
			if err := a.Habits.Delete(id); err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(MsgHabitDeleted, shortID(id))))
		}),
	}
}

func newHabitStreakCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak <id>",
		Short: "Show the current streak of a habit",
		Args:  cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			id, err := resolveHabit(a, args[0])
			if err != nil {
				return err
			}
			h, err := a.Habits.Get(id)
			if err != nil {
				return err
			}
			streak, err := a.Habits.Streak(id, habits.Today())
			if err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf("%s: %d day streak", h.Title, streak)).
				WithData(habitRow{ID: id, Habit: h, Streak: streak}))
		}),
	}
}
