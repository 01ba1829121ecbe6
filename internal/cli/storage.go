package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/arthur-debert/myquest/pkg/app"
	"github.com/arthur-debert/myquest/pkg/backup"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/style"
	"github.com/arthur-debert/myquest/pkg/ui"
	"github.com/arthur-debert/myquest/pkg/ui/display"
	"github.com/spf13/cobra"
)

// statusRow is the JSON shape of one document's status
type statusRow struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	Revision  uint64    `json:"revision"`
	Persisted uint64    `json:"persisted"`
	Dirty     bool      `json:"dirty"`
	LastSave  time.Time `json:"last_save,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Backups   int       `json:"backups"`
}

func newStorageCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storage",
		Short:   MsgStorageShort,
		Long:    MsgStorageLong,
		Example: MsgStorageExample,
	}

	cmd.AddCommand(
		newStorageStatusCmd(opts),
		newStorageSaveCmd(opts),
		newStorageReloadCmd(opts),
		newStorageBackupsCmd(opts),
		newStorageRestoreCmd(opts),
	)
	return cmd
}

func completeDocuments(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{app.DocHabits, app.DocTimeline, app.DocTodos}, cobra.ShellCompDirectiveNoFileComp
}

// selectDocuments returns the named documents, or all of them when no
// name is given
func selectDocuments(a *app.Context, names []string) ([]string, map[string]app.Document, error) {
	if len(names) == 0 {
		names = a.DocumentNames()
	}
	docs := make(map[string]app.Document, len(names))
	for _, name := range names {
		doc, err := a.Document(name)
		if err != nil {
			return nil, nil, err
		}
		docs[name] = doc
	}
	return names, docs, nil
}

func saveState(dirty, failed, rich bool) string {
	switch {
	case failed && rich:
		return style.FailedIndicator + " failed"
	case failed:
		return "failed"
	case dirty && rich:
		return style.PendingIndicator + " pending"
	case dirty:
		return "pending"
	case rich:
		return style.SavedIndicator + " yes"
	default:
		return "yes"
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

func newStorageStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "status [document...]",
		Short:             "Show the persistence state of each document",
		ValidArgsFunction: completeDocuments,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			names, docs, err := selectDocuments(a, args)
			if err != nil {
				return err
			}

			view := display.NewTable("Storage", "Document", "Format", "Revision", "Saved", "Last save", "Backups", "Path")
			rows := make([]statusRow, 0, len(names))
			for _, name := range names {
				doc := docs[name]
				st := doc.Status()
				slots, err := doc.Backups()
				if err != nil {
					return err
				}

				row := statusRow{
					Name:      name,
					Path:      st.Path,
					Format:    st.Format,
					Revision:  st.Revision,
					Persisted: st.Persisted,
					Dirty:     st.Dirty(),
					LastSave:  st.LastSave,
					Backups:   len(slots),
				}
				saved := saveState(st.Dirty(), st.LastError != nil, opts.rich(cmd))
				if st.LastError != nil {
					row.LastError = st.LastError.Error()
				}
				rows = append(rows, row)
				view.AddRow(name, st.Format, strconv.FormatUint(st.Revision, 10), saved,
					formatTime(st.LastSave), strconv.Itoa(len(slots)), st.Path)
			}
			return r.RenderResult(view.WithData(rows))
		}),
	}
}

func newStorageSaveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "save [document...]",
		Short:             "Write documents to disk now",
		ValidArgsFunction: completeDocuments,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			logger := logging.GetLogger("cli.storage")
			names, docs, err := selectDocuments(a, args)
			if err != nil {
				return err
			}
			for _, name := range names {
				done := logging.LogOperationStart(logger, "save "+name)
				err := docs[name].ForceSave()
				done()
				if err != nil {
					return err
				}
				if err := r.RenderMessage(fmt.Sprintf(MsgSaved, name)); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newStorageReloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "reload [document...]",
		Short:             "Re-read documents from disk",
		ValidArgsFunction: completeDocuments,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			names, docs, err := selectDocuments(a, args)
			if err != nil {
				return err
			}
			for _, name := range names {
				if err := docs[name].Reload(); err != nil {
					return err
				}
				if err := r.RenderMessage(fmt.Sprintf(MsgReloaded, name)); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}

func newStorageBackupsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "backups <document>",
		Short:             "List the backup slots of a document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			doc, err := a.Document(args[0])
			if err != nil {
				return err
			}
			slots, err := doc.Backups()
			if err != nil {
				return err
			}
			if len(slots) == 0 {
				return r.RenderResult(display.Message(fmt.Sprintf(MsgNoBackups, args[0])).WithData([]backup.Slot{}))
			}

			view := display.NewTable("Backups of "+args[0], "Slot", "Modified", "Size", "Path")
			for _, s := range slots {
				view.AddRow(strconv.Itoa(s.Index), formatTime(s.ModTime), strconv.FormatInt(s.Size, 10), s.Path)
			}
			return r.RenderResult(view.WithData(slots))
		}),
	}
}

func newStorageRestoreCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "restore <document> <slot>",
		Short:             "Replace a document with one of its backups",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeDocuments,
		RunE: opts.withApp(func(cmd *cobra.Command, a *app.Context, r ui.Renderer, args []string) error {
			doc, err := a.Document(args[0])
			if err != nil {
				return err
			}
			slot, err := strconv.Atoi(args[1])
			if err != nil || slot < 1 {
				return errors.Newf(errors.ErrInvalidInput, "invalid backup slot %q", args[1])
			}
			if err := doc.Restore(slot); err != nil {
				return err
			}
			return r.RenderMessage(fmt.Sprintf(MsgRestored, args[0], slot))
		}),
	}
}
