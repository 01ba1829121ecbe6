package app

import (
	"context"

	"github.com/arthur-debert/myquest/pkg/paths"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/arthur-debert/myquest/pkg/timeline"
)

// StateFileName is the state document kept in the state directory
const StateFileName = "state.json"

// State remembers choices between runs
type State struct {
	// Timeline is the last selected timeline
	Timeline string `json:"timeline"`
}

func (c *Context) rememberedTimeline() string {
	name, err := storage.Read(c.state, func(s *State) string { return s.Timeline })
	if err != nil || paths.ValidateName(name) != nil {
		return ""
	}
	return name
}

// SelectTimeline switches the active timeline and remembers the choice
// for later runs.
func (c *Context) SelectTimeline(ctx context.Context, name string) (timeline.Document, error) {
	doc, err := c.Timeline.Select(ctx, name)
	if err != nil {
		return timeline.Document{}, err
	}
	if err := c.state.Write(func(s *State) { s.Timeline = name }); err != nil {
		return timeline.Document{}, err
	}
	return doc, nil
}
