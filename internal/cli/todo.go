package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arthur-debert/myquest/pkg/app"
	"github.com/arthur-debert/myquest/pkg/todos"
	"github.com/arthur-debert/myquest/pkg/ui"
	"github.com/arthur-debert/myquest/pkg/ui/display"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func titleDay(day string) string {
	return cases.Title(language.English).String(day)
}

func newTodoCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todo",
		Aliases: []string{"todos"},
		Short:   MsgTodoShort,
		Example: MsgTodoExample,
	}

	cmd.AddCommand(
		newTodoListCmd(opts),
		newTodoAddCmd(opts),
		newTodoMoveCmd(opts),
		newTodoDeleteCmd(opts),
	)
	return cmd
}

func resolveTodo(a *app.Context, input string) (uuid.UUID, error) {
	week, err := a.Todos.Week()
	if err != nil {
		return uuid.Nil, err
	}
	var known []uuid.UUID
	for _, day := range todos.Days {
		for _, t := range week[day] {
			known = append(known, t.ID)
		}
	}
	return matchID("todo", input, known)
}

func completeDays(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return todos.Days, cobra.ShellCompDirectiveNoFileComp
}

func newTodoListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "list [day]",
		Short:             "Show the week's todos, or one day's",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeDays,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			days := todos.Days
			if len(args) == 1 {
				day, err := todos.ParseDay(args[0])
				if err != nil {
					return err
				}
				days = []string{day}
			}

			view := display.NewTable("Todos", "Day", "#", "Content", "ID")
			data := map[string][]todos.Todo{}
			count := 0
			for _, day := range days {
				items, err := a.Todos.ByDay(day)
				if err != nil {
					return err
				}
				data[day] = items
				for _, t := range items {
					view.AddRow(titleDay(day), strconv.Itoa(t.Position), t.Content, shortID(t.ID))
					count++
				}
			}
			return r.RenderResult(view.WithMessage(fmt.Sprintf("%d todos", count)).WithData(data))
		}),
	}
}

func newTodoAddCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <day> <content>",
		Short: "Add a todo at the end of a day",
		Args:  cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return completeDays(cmd, args, toComplete)
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			todo, err := a.Todos.Create(strings.Join(args[1:], " "), args[0])
			if err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(MsgTodoCreated, todo.Day, todo.Position)).WithData(todo))
		}),
	}
}

func newTodoMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <day>",
		Short: "Move a todo to the end of another day",
		Args:  cobra.ExactArgs(2),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			id, err := resolveTodo(a, args[0])
			if err != nil {
				return err
			}
			if err := a.Todos.Move(id, args[1]); err != nil {
				return err
			}
			day, _ := todos.ParseDay(args[1])
			return r.RenderResult(display.Message(fmt.Sprintf(MsgTodoMoved, shortID(id), day)))
		}),
	}
}

func newTodoDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm", "done"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			id, err := resolveTodo(a, args[0])
			if err != nil {
				return err
			}
			if err := a.Todos.Delete(id); err != nil {
				return err
			}
			return r.RenderResult(display.Message(fmt.Sprintf(MsgTodoDeleted, shortID(id))))
		}),
	}
}
