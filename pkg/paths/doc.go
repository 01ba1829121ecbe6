// Package paths provides centralized path handling for myquest.
//
// User data lives in a visible folder under the user's Documents
// directory so that it can be synced, backed up or edited by hand.
// Configuration and logs follow the XDG Base Directory specification.
//
// # Environment Variables
//
//   - MYQUEST_DATA_DIR: override the data root (default: $XDG_DOCUMENTS_DIR/myquest)
//   - MYQUEST_CONFIG_DIR: override the config directory (default: $XDG_CONFIG_HOME/myquest)
//   - MYQUEST_STATE_DIR: override the state directory (default: $XDG_STATE_HOME/myquest)
//
// # Data Layout
//
//	<data>/habits/habits.<ext>
//	<data>/todos.<ext>
//	<data>/timelines/<name>.<ext>
//
// The extension is chosen by the configured format for each document, so
// the same layout serves JSON, YAML and TOML files.
//
// # Usage
//
//	p, err := paths.New("")
//	if err != nil {
//	    return err
//	}
//	habitsFile := p.HabitsFile("json")
//	timelineFile, err := p.TimelineFile("default", "yaml")
package paths
