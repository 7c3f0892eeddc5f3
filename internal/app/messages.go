package app

import "github.com/zjrosen/flowlens/internal/workflow"

// Command is a semantic instruction pushed from outside the UI loop, over
// the command channel. Commands are handled idempotently: a command that
// does not apply to the current state is a no-op, never an error.
type Command struct {
	Name string
	// Path accompanies CmdOpenPath.
	Path string
}

// Command names.
const (
	CmdZoomIn        = "zoom-in"
	CmdZoomOut       = "zoom-out"
	CmdResetView     = "reset-view"
	CmdFit           = "fit"
	CmdToggleSidebar = "toggle-sidebar"
	CmdCloseTab      = "close-tab"
	CmdNextTab       = "next-tab"
	CmdPrevTab       = "prev-tab"
	CmdOpenPath      = "open-path"
)

// loadResultMsg carries the outcome of reading a file.
type loadResultMsg struct {
	path     string
	doc      *workflow.Document
	err      error
	isReload bool
}

// copyResultMsg reports a clipboard write.
type copyResultMsg struct {
	err error
}

// commandMsg delivers one Command from the channel.
type commandMsg struct {
	cmd Command
}

// commandClosedMsg signals the command channel was closed.
type commandClosedMsg struct{}

// fileChangedMsg reports an on-disk change to an open file.
type fileChangedMsg struct {
	path string
}

// watcherDoneMsg signals the watcher loop ended.
type watcherDoneMsg struct{}
