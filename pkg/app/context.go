package app

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/myquest/pkg/backup"
	"github.com/arthur-debert/myquest/pkg/codec"
	"github.com/arthur-debert/myquest/pkg/config"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/filesystem"
	"github.com/arthur-debert/myquest/pkg/habits"
	"github.com/arthur-debert/myquest/pkg/logging"
	"github.com/arthur-debert/myquest/pkg/paths"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/arthur-debert/myquest/pkg/timeline"
	"github.com/arthur-debert/myquest/pkg/todos"
	"github.com/arthur-debert/myquest/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Document names
const (
	DocHabits   = "habits"
	DocTodos    = "todos"
	DocTimeline = "timeline"
)

// Document is the maintenance surface shared by every storage.Manager
type Document interface {
	Path() string
	Status() storage.Status
	ForceSave() error
	Reload() error
	Restore(n int) error
	Backups() ([]backup.Slot, error)
	Flush(ctx context.Context) error
}

// Options configures New. Nil fields are resolved from the environment.
type Options struct {
	Config *config.Config
	Paths  paths.Paths
	FS     types.FS
	// Timeline overrides config.Timeline.DefaultName
	Timeline string
}

// Context owns every open document of the application
type Context struct {
	Config   *config.Config
	Paths    paths.Paths
	FS       types.FS
	Habits   *habits.Manager
	Todos    *todos.Manager
	Timeline *timeline.Manager

	state *storage.Manager[State]
}

// New opens all documents. If one fails to open, those already opened are
// closed again.
func New(ctx context.Context, opts Options) (*Context, error) {
	logger := logging.GetLogger("app")
	c := &Context{Config: opts.Config, Paths: opts.Paths, FS: opts.FS}

	if c.Paths == nil {
		p, err := paths.New("")
		if err != nil {
			return nil, err
		}
		c.Paths = p
	}
	if c.Config == nil {
		cfg, err := config.Load(config.LoadOptions{File: c.Paths.ConfigFile()})
		if err != nil {
			return nil, err
		}
		c.Config = cfg
	}
	if c.FS == nil {
		c.FS = filesystem.NewOS()
	}
	logger.Debug().Str("dataDir", c.Paths.DataDir()).Msg("Opening documents")

	var err error
	habitsFormat := c.Config.Formats.Habits
	c.Habits, err = habits.New(c.Paths.HabitsFile(habitsFormat), c.Config.StorageConfig(habitsFormat), c.FS)
	if err != nil {
		return nil, c.abort(ctx, err)
	}

	todosFormat := c.Config.Formats.Todos
	c.Todos, err = todos.New(c.Paths.TodosFile(todosFormat), c.Config.StorageConfig(todosFormat), c.FS)
	if err != nil {
		return nil, c.abort(ctx, err)
	}

	c.state, err = storage.New(filepath.Join(c.Paths.StateDir(), StateFileName), storage.Options[State]{
		Config: storage.Config{CreateDirs: true},
		Codec:  codec.JSON,
		FS:     c.FS,
	})
	if err != nil {
		return nil, c.abort(ctx, err)
	}

	name := opts.Timeline
	if name == "" {
		name = c.rememberedTimeline()
	}
	if name == "" {
		name = c.Config.Timeline.DefaultName
	}
	c.Timeline, err = timeline.New(c.Paths, c.Config.StorageConfig(c.Config.Formats.Timeline), c.FS, name)
	if err != nil {
		return nil, c.abort(ctx, err)
	}

	return c, nil
}

func (c *Context) abort(ctx context.Context, cause error) error {
	if err := c.Close(ctx); err != nil {
		logger := logging.GetLogger("app")
		logger.Warn().Err(err).Msg("Failed to close documents after startup error")
	}
	return cause
}

// Documents returns the open documents keyed by name
func (c *Context) Documents() map[string]Document {
	docs := map[string]Document{}
	if c.Habits != nil {
		docs[DocHabits] = c.Habits.Storage()
	}
	if c.Todos != nil {
		docs[DocTodos] = c.Todos.Storage()
	}
	if c.Timeline != nil {
		docs[DocTimeline] = c.Timeline.Storage()
	}
	return docs
}

// DocumentNames lists the names Document accepts
func (c *Context) DocumentNames() []string {
	names := make([]string, 0, 3)
	for name := range c.Documents() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Document looks up one open document by name
func (c *Context) Document(name string) (Document, error) {
	doc, ok := c.Documents()[name]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "unknown document %q", name).
			WithDetail("known", c.DocumentNames())
	}
	return doc, nil
}

// Close flushes and closes every document concurrently. A failure in one
// document does not cancel the others; the first error is returned.
func (c *Context) Close(ctx context.Context) error {
	logger := logging.GetLogger("app")
	var g errgroup.Group

	closers := map[string]func(context.Context) error{}
	if c.Habits != nil {
		closers[DocHabits] = c.Habits.Close
	}
	if c.Todos != nil {
		closers[DocTodos] = c.Todos.Close
	}
	if c.Timeline != nil {
		closers[DocTimeline] = c.Timeline.Close
	}
	if c.state != nil {
		closers["state"] = c.state.Close
	}

	for name, closeFn := range closers {
		name, closeFn := name, closeFn
		g.Go(func() error {
			if err := closeFn(ctx); err != nil {
				logger.Error().Err(err).Str("document", name).Msg("Failed to close document")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
