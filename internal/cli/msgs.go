package cli

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort     = "Track habits, weekly todos and a life timeline in plain files"
	MsgVersionShort  = "Print version information"
	MsgVersionLong   = "Print detailed version information including commit hash and build date"
	MsgHabitShort    = "Manage habits and their completed days"
	MsgTodoShort     = "Manage the weekly todo board"
	MsgTimelineShort = "Manage life timelines, periods and events"
	MsgStorageShort  = "Inspect and maintain the stored documents"
	MsgConfigShort   = "Show or create the configuration file"
	MsgTopicsShort   = "List help topics or show one"
	MsgManShort      = "Generate man pages"

	// Status messages
	MsgHabitCreated   = "Created habit %q (%s)"
	MsgHabitDeleted   = "Deleted habit %s"
	MsgHabitMarked    = "Marked %s as done on %s"
	MsgHabitUnmarked  = "Unmarked %s on %s"
	MsgNoHabits       = "No habits yet. Add one with 'myquest habit add <title>'."
	MsgTodoCreated    = "Added todo to %s at position %d"
	MsgTodoDeleted    = "Deleted todo %s"
	MsgTodoMoved      = "Moved todo %s to %s"
	MsgTimelineSwitch = "Switched to timeline %q"
	MsgPeriodCreated  = "Added period %q (%s)"
	MsgEventCreated   = "Added event %q (%s)"
	MsgSaved          = "Saved %s"
	MsgReloaded       = "Reloaded %s"
	MsgRestored       = "Restored %s from backup %d"
	MsgConfigCreated  = "Created config file %s"
	MsgConfigExists   = "config file %s already exists, use --force to overwrite"
	MsgManGenerated   = "Generated man pages in %s"
	MsgWeeksSummary   = "%d of %d weeks lived, %d remaining"
	MsgCurrentPeriod  = "Current period: %s"
	MsgNoBackups      = "No backups for %s"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagFormat    = "Output format: auto, term, text or json"
	MsgFlagDataDir   = "Data directory (default $MYQUEST_DATA_DIR or ~/Documents/myquest)"
	MsgFlagTimeline  = "Timeline to open (default from config)"
	MsgFlagStart     = "Start date"
	MsgFlagColor     = "Colour as #RRGGBB"
	MsgFlagWeekStart = "First day of the habit's week"
	MsgFlagForce     = "Overwrite an existing file"
	MsgFlagManDir    = "Directory to write man pages to"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/storage-long.txt
	msgStorageLongRaw string
	MsgStorageLong    = strings.TrimSpace(msgStorageLongRaw)

	//go:embed msgs/storage-example.txt
	msgStorageExampleRaw string
	MsgStorageExample    = strings.TrimSpace(msgStorageExampleRaw)

	//go:embed msgs/habit-example.txt
	msgHabitExampleRaw string
	MsgHabitExample    = strings.TrimSpace(msgHabitExampleRaw)

	//go:embed msgs/todo-example.txt
	msgTodoExampleRaw string
	MsgTodoExample    = strings.TrimSpace(msgTodoExampleRaw)

	//go:embed msgs/timeline-example.txt
	msgTimelineExampleRaw string
	MsgTimelineExample    = strings.TrimSpace(msgTimelineExampleRaw)
)
