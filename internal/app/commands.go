package app

import (
	"github.com/fsnotify/fsnotify"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/flowlens/internal/clipboard"
	"github.com/zjrosen/flowlens/internal/log"
	"github.com/zjrosen/flowlens/internal/workflow/loader"
)

// loadFile reads a workflow document off the UI loop.
func loadFile(path string, isReload bool) tea.Cmd {
	return func() tea.Msg {
		res := loader.Read(path)
		return loadResultMsg{path: res.SourcePath, doc: res.Document, err: res.Err, isReload: isReload}
	}
}

// copyText writes to the system clipboard off the UI loop.
func copyText(clip clipboard.Clipboard, text string) tea.Cmd {
	return func() tea.Msg {
		err := clip.Copy(text)
		if err != nil {
			log.Warn(log.CatUI, "clipboard write failed", "error", err)
		}
		return copyResultMsg{err: err}
	}
}

// waitForCommand blocks on the external command channel and re-arms after
// every delivery.
func waitForCommand(ch <-chan Command) tea.Cmd {
	return func() tea.Msg {
		cmd, ok := <-ch
		if !ok {
			return commandClosedMsg{}
		}
		return commandMsg{cmd: cmd}
	}
}

// waitForFileChange blocks on the watcher and reports write events for open
// files. Create events count too: some editors replace files on save.
func waitForFileChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return watcherDoneMsg{}
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					return fileChangedMsg{path: ev.Name}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return watcherDoneMsg{}
				}
				log.Warn(log.CatLoader, "file watcher error", "error", err)
			}
		}
	}
}
