// Package app hosts the interactive viewer: the Bubble Tea model wiring the
// gesture machine, viewport, tabs, and renderer together, plus the command
// channel and file watcher that drive it from outside.
package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/flowlens/internal/clipboard"
	"github.com/zjrosen/flowlens/internal/config"
	"github.com/zjrosen/flowlens/internal/gesture"
	"github.com/zjrosen/flowlens/internal/log"
	"github.com/zjrosen/flowlens/internal/overlay"
	"github.com/zjrosen/flowlens/internal/params"
	"github.com/zjrosen/flowlens/internal/render"
	"github.com/zjrosen/flowlens/internal/tabs"
	"github.com/zjrosen/flowlens/internal/typecolor"
	"github.com/zjrosen/flowlens/internal/ui/styles"
	"github.com/zjrosen/flowlens/internal/view"
	"github.com/zjrosen/flowlens/internal/workflow"
)

const (
	tabBarHeight    = 1
	statusBarHeight = 1
	sidebarWidth    = 36
)

// Model is the root application state.
type Model struct {
	cfg    config.Config
	labels *params.LabelTable

	tabsMgr *tabs.Manager
	cam     view.Camera
	machine gesture.Machine
	scene   *render.Scene
	zones   *zone.Manager

	// sidebar is a pointer so scroll state survives value-receiver updates.
	sidebar *viewport.Model

	clip     clipboard.Clipboard
	commands <-chan Command
	watcher  *fsnotify.Watcher

	width, height int
	selectedID    int64
	showSidebar   bool
	showStatusBar bool
	panMode       bool

	// dragStart holds each selected node's position when a node drag was
	// promoted; displacements apply against these, not current positions.
	dragStart map[int64][2]float64

	status    string
	statusErr bool

	initialPaths []string
}

// New builds the root model. commands may be nil when no external driver is
// attached; initialPaths are opened on startup.
func New(cfg config.Config, commands <-chan Command, initialPaths []string) Model {
	labels := cfg.Labels.LabelTable()
	registry := typecolor.NewRegistry()
	for typeName, hex := range cfg.Theme.Types {
		registry.Override(typeName, hex)
	}

	var watcher *fsnotify.Watcher
	if cfg.AutoReload {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn(log.CatLoader, "file watching unavailable", "error", err)
		} else {
			watcher = w
		}
	}

	vp := viewport.New(sidebarWidth-2, 1)

	return Model{
		cfg:           cfg,
		labels:        labels,
		tabsMgr:       tabs.NewManager(),
		cam:           view.NewCamera(),
		scene:         render.NewScene(registry, overlay.NewEngine(labels)),
		zones:         zone.New(),
		sidebar:       &vp,
		clip:          clipboard.System{},
		commands:      commands,
		watcher:       watcher,
		showSidebar:   cfg.UI.ShowSidebar,
		showStatusBar: cfg.UI.ShowStatusBar,
		initialPaths:  initialPaths,
	}
}

// Init starts the command-channel listener, the file watcher, and the
// initial file loads.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.commands != nil {
		cmds = append(cmds, waitForCommand(m.commands))
	}
	if m.watcher != nil {
		cmds = append(cmds, waitForFileChange(m.watcher))
	}
	for _, p := range m.initialPaths {
		cmds = append(cmds, loadFile(p, false))
	}
	return tea.Batch(cmds...)
}

// Update routes every message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if t := m.tabsMgr.Active(); t != nil && t.View == nil {
			m.fitActive()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.BlurMsg:
		// A focus switch can swallow the pointer-up mid drag.
		if res := m.machine.Blur(); res.Op == gesture.OpEndDrag {
			m.saveView()
		}
		m.dragStart = nil
		m.panMode = false
		return m, nil

	case loadResultMsg:
		return m.handleLoadResult(msg)

	case commandMsg:
		next, cmd := m.handleCommand(msg.cmd)
		return next, tea.Batch(cmd, waitForCommand(m.commands))

	case commandClosedMsg:
		return m, nil

	case fileChangedMsg:
		var cmds []tea.Cmd
		if m.hasTabFor(msg.path) {
			cmds = append(cmds, loadFile(msg.path, true))
		}
		if m.watcher != nil {
			cmds = append(cmds, waitForFileChange(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case watcherDoneMsg:
		return m, nil

	case copyResultMsg:
		// Only success is announced; a failed copy already fell through
		// every fallback and has nothing actionable to show.
		if msg.err == nil {
			m.setStatus("copied to clipboard", false)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.watcher != nil {
			_ = m.watcher.Close()
		}
		return m, tea.Quit

	case " ":
		// Terminals report no key releases, so space latches the pan
		// modifier instead of holding it.
		m.panMode = !m.panMode
		return m, nil

	case "esc":
		m.selectedID = 0
		m.panMode = false
		m.machine.Blur()
		m.refreshSummary()
		return m, nil

	case "+", "=":
		cx, cy := m.viewCenter()
		m.cam = m.cam.ZoomStep(1, cx, cy)
		m.saveView()
		return m, nil

	case "-", "_":
		cx, cy := m.viewCenter()
		m.cam = m.cam.ZoomStep(-1, cx, cy)
		m.saveView()
		return m, nil

	case "0":
		m.cam = view.NewCamera()
		m.saveView()
		return m, nil

	case "f":
		m.fitActive()
		m.saveView()
		return m, nil

	case "s":
		m.showSidebar = !m.showSidebar
		return m, nil

	case "tab", "]":
		m.tabsMgr.Next()
		m.restoreView()
		return m, nil

	case "shift+tab", "[":
		m.tabsMgr.Prev()
		m.restoreView()
		return m, nil

	case "w", "ctrl+w":
		m.closeActiveTab()
		return m, nil

	case "c", "y":
		return m, m.copySelected()
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// Tab strip clicks resolve through hit zones, not coordinates.
	if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		for _, t := range m.tabsMgr.Tabs() {
			if m.zones.Get(t.ID).InBounds(msg) {
				m.tabsMgr.Activate(t.ID)
				m.restoreView()
				return m, nil
			}
		}
	}

	cellX, cellY := msg.X, msg.Y-tabBarHeight
	px, py := float64(cellX)*render.CellWidth, float64(cellY)*render.CellHeight

	// Wheel over the sidebar scrolls its content, not the canvas zoom.
	if m.sidebarVisible() && cellX >= m.canvasWidth() {
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.sidebar.ScrollUp(1)
			return m, nil
		case tea.MouseButtonWheelDown:
			m.sidebar.ScrollDown(1)
			return m, nil
		}
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.cam = m.cam.ZoomAt(-60, px, py)
		m.saveView()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.cam = m.cam.ZoomAt(60, px, py)
		m.saveView()
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		return m.handlePointerDown(msg, cellX, cellY, px, py)

	case tea.MouseActionMotion:
		m.applyGesture(m.machine.PointerMove(px, py))
		return m, nil

	case tea.MouseActionRelease:
		m.applyGesture(m.machine.PointerUp(px, py))
		return m, nil
	}
	return m, nil
}

func (m *Model) handlePointerDown(msg tea.MouseMsg, cellX, cellY int, px, py float64) (tea.Model, tea.Cmd) {
	doc := m.activeDoc()
	if doc == nil {
		return *m, nil
	}

	var hit gesture.Hit
	if m.sidebarVisible() && cellX >= m.canvasWidth() {
		// Presses on the sidebar are text selection, never gestures.
		hit.OverOverlay = true
	} else if n := m.scene.NodeAtCell(doc, m.cam, cellX, cellY); n != nil {
		hit.OverNode = true
		hit.NodeSelected = n.ID == m.selectedID
		hit.InTitleBar = m.scene.InTitleBarCell(n, m.cam, cellX, cellY)
	}

	btn := gesture.ButtonOther
	switch msg.Button {
	case tea.MouseButtonLeft:
		btn = gesture.ButtonPrimary
	case tea.MouseButtonMiddle:
		btn = gesture.ButtonMiddle
	}

	res := m.machine.PointerDown(px, py, btn, m.panMode, hit)
	m.applyGesture(res)

	// The machine passed on this press, so the plain click path applies:
	// selecting the node under the pointer.
	if res.Op == gesture.OpNone && m.machine.State() == gesture.StateIdle &&
		btn == gesture.ButtonPrimary && hit.OverNode && !hit.NodeSelected {
		if n := m.scene.NodeAtCell(doc, m.cam, cellX, cellY); n != nil {
			m.selectedID = n.ID
			m.sidebar.GotoTop()
			log.Debug(log.CatGesture, "node selected", "node", n.ID, "type", n.Type)
		}
	}
	return *m, nil
}

// applyGesture executes the machine's verdict against the camera, the
// document, and the selection.
func (m *Model) applyGesture(res gesture.Result) {
	switch res.Op {
	case gesture.OpBeginPan:
		m.cam = m.cam.Pan(res.Dx, res.Dy)

	case gesture.OpPan:
		m.cam = m.cam.Pan(res.Dx, res.Dy)
		m.saveView()

	case gesture.OpBeginNodeDrag:
		m.captureDragStart()
		m.moveDraggedNodes(res.Dx, res.Dy)

	case gesture.OpDragNodes:
		m.moveDraggedNodes(res.Dx, res.Dy)

	case gesture.OpDeselect:
		m.selectedID = 0
		m.refreshSummary()

	case gesture.OpEndDrag:
		m.dragStart = nil
		m.saveView()
	}
}

func (m *Model) captureDragStart() {
	m.dragStart = make(map[int64][2]float64)
	if n := m.selectedNode(); n != nil {
		m.dragStart[n.ID] = [2]float64{n.X, n.Y}
	}
}

// moveDraggedNodes applies the total screen displacement, scale-divided so
// nodes track the pointer at any zoom.
func (m *Model) moveDraggedNodes(dx, dy float64) {
	doc := m.activeDoc()
	if doc == nil {
		return
	}
	for id, start := range m.dragStart {
		if n := doc.NodeByID(id); n != nil {
			n.X = start[0] + dx/m.cam.Scale
			n.Y = start[1] + dy/m.cam.Scale
		}
	}
}

func (m Model) handleLoadResult(msg loadResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		// No tab, no partial state; the failure is only a status line.
		m.setStatus(msg.err.Error(), true)
		return m, nil
	}

	m.scene.Colors.ScanDocument(msg.doc.SlotTypes())

	if msg.isReload {
		if m.tabsMgr.Reload(msg.path, msg.doc) {
			m.scene.Layouts.Invalidate()
			if m.selectedNode() == nil {
				m.selectedID = 0
			}
			m.setStatus(fmt.Sprintf("reloaded %s", msg.path), false)
		}
		return m, nil
	}

	_, created := m.tabsMgr.Open(msg.path, msg.doc)
	m.selectedID = 0
	m.restoreView()
	m.refreshSummary()
	if created && m.watcher != nil {
		if err := m.watcher.Add(msg.path); err != nil {
			log.Warn(log.CatLoader, "cannot watch file", "path", msg.path, "error", err)
		}
	}
	return m, nil
}

// handleCommand applies one external command. Every command is safe in any
// state; fit on an empty document resets the view instead of failing.
func (m Model) handleCommand(cmd Command) (Model, tea.Cmd) {
	log.Debug(log.CatCommands, "command received", "name", cmd.Name, "path", cmd.Path)
	switch cmd.Name {
	case CmdZoomIn:
		cx, cy := m.viewCenter()
		m.cam = m.cam.ZoomStep(1, cx, cy)
		m.saveView()
	case CmdZoomOut:
		cx, cy := m.viewCenter()
		m.cam = m.cam.ZoomStep(-1, cx, cy)
		m.saveView()
	case CmdResetView:
		m.cam = view.NewCamera()
		m.saveView()
	case CmdFit:
		m.fitActive()
		m.saveView()
	case CmdToggleSidebar:
		m.showSidebar = !m.showSidebar
	case CmdCloseTab:
		m.closeActiveTab()
	case CmdNextTab:
		m.tabsMgr.Next()
		m.restoreView()
	case CmdPrevTab:
		m.tabsMgr.Prev()
		m.restoreView()
	case CmdOpenPath:
		if cmd.Path != "" && !m.hasTabFor(cmd.Path) {
			return m, loadFile(cmd.Path, false)
		}
		// Already open: just activate it.
		if t := m.tabFor(cmd.Path); t != nil {
			m.tabsMgr.Activate(t.ID)
			m.restoreView()
		}
	}
	return m, nil
}

func (m *Model) closeActiveTab() {
	t := m.tabsMgr.Active()
	if t == nil {
		return
	}
	if m.watcher != nil {
		_ = m.watcher.Remove(t.SourcePath)
	}
	m.tabsMgr.CloseActive()
	m.selectedID = 0
	m.restoreView()
	m.refreshSummary()
}

// copySelected copies the selected node's parameters, untruncated.
func (m Model) copySelected() tea.Cmd {
	n := m.selectedNode()
	if n == nil {
		return nil
	}
	items := params.Build(n, m.labels)
	if len(items) == 0 {
		return nil
	}
	var b strings.Builder
	for _, it := range items {
		b.WriteString(it.Label)
		b.WriteString(": ")
		b.WriteString(it.Copy)
		b.WriteString("\n")
	}
	return copyText(m.clip, b.String())
}

func (m *Model) fitActive() {
	doc := m.activeDoc()
	if doc == nil {
		m.cam = view.NewCamera()
		return
	}
	m.cam = view.Fit(doc, float64(m.canvasWidth())*render.CellWidth, float64(m.canvasHeight())*render.CellHeight)
}

func (m *Model) saveView() {
	m.tabsMgr.SaveView(m.cam)
}

// restoreView installs the active tab's saved camera, fitting fresh tabs.
func (m *Model) restoreView() {
	t := m.tabsMgr.Active()
	if t == nil {
		m.cam = view.NewCamera()
		return
	}
	if t.View != nil {
		m.cam = *t.View
		return
	}
	m.fitActive()
}

func (m *Model) refreshSummary() {
	t := m.tabsMgr.Active()
	if t == nil {
		m.setStatus("no file open — flowlens <file.json|file.png>", false)
		return
	}
	m.setStatus(fmt.Sprintf("%s — %d nodes, %d links", t.Title, len(t.Document.Nodes), len(t.Document.Links)), false)
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

func (m Model) activeDoc() *workflow.Document {
	if t := m.tabsMgr.Active(); t != nil {
		return t.Document
	}
	return nil
}

func (m Model) selectedNode() *workflow.Node {
	if m.selectedID == 0 {
		return nil
	}
	doc := m.activeDoc()
	if doc == nil {
		return nil
	}
	return doc.NodeByID(m.selectedID)
}

func (m Model) hasTabFor(path string) bool { return m.tabFor(path) != nil }

func (m Model) tabFor(path string) *tabs.Tab {
	for _, t := range m.tabsMgr.Tabs() {
		if t.SourcePath == path {
			return t
		}
	}
	return nil
}

// sidebarVisible reports whether the sidebar pane renders: the tab summary,
// or the selected node's detail when there is a selection.
func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.tabsMgr.Len() > 0 && m.width > sidebarWidth*2
}

func (m Model) canvasWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= sidebarWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (m Model) canvasHeight() int {
	h := m.height - tabBarHeight
	if m.showStatusBar {
		h -= statusBarHeight
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) viewCenter() (float64, float64) {
	return float64(m.canvasWidth()) * render.CellWidth / 2, float64(m.canvasHeight()) * render.CellHeight / 2
}

// View renders the chrome and the canvas. The whole frame passes through
// the zone scanner so tab hit zones resolve.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	canvas := m.scene.Render(m.activeDoc(), m.cam, m.selectedID, m.canvasWidth(), m.canvasHeight(), m.sidebarVisible())
	body := canvas.String()
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar())
	}

	parts := []string{m.renderTabBar(), body}
	if m.showStatusBar {
		parts = append(parts, m.renderStatusBar())
	}
	return m.zones.Scan(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderTabBar() string {
	if m.tabsMgr.Len() == 0 {
		return styles.TabInactive.Render("flowlens")
	}
	active := m.tabsMgr.Active()
	rendered := make([]string, 0, m.tabsMgr.Len())
	for _, t := range m.tabsMgr.Tabs() {
		style := styles.TabInactive
		if active != nil && t.ID == active.ID {
			style = styles.TabActive
		}
		rendered = append(rendered, m.zones.Mark(t.ID, style.Render(t.Title)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderStatusBar() string {
	msg := m.status
	if msg == "" {
		t := m.tabsMgr.Active()
		if t == nil {
			msg = "no file open"
		} else {
			msg = t.Title
		}
	}

	left := styles.StatusBar
	if m.statusErr {
		left = styles.StatusError
	}
	mode := ""
	if m.panMode {
		mode = " PAN "
	}
	right := styles.StatusBar.Render(fmt.Sprintf("%s%3.0f%%", mode, m.cam.Scale*100))

	gap := m.width - lipgloss.Width(left.Render(msg)) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left.Render(msg) + styles.StatusBar.Render(strings.Repeat(" ", gap)) + right
}

// renderSidebar shows the selected node's detail (parameters plus raw JSON)
// as selectable, scrollable text, or the tab summary when nothing is
// selected. The detail view is the overlay counterpart of the canvas panel:
// while it is visible the canvas suppresses its own parameter text.
func (m Model) renderSidebar() string {
	title, content, focused := m.sidebarContent()

	m.sidebar.Width = sidebarWidth - 2
	m.sidebar.Height = maxInt(m.canvasHeight()-2, 1)
	m.sidebar.SetContent(content)

	return styles.RenderWithTitleBorder(m.sidebar.View(), title, sidebarWidth, m.canvasHeight(), focused)
}

func (m Model) sidebarContent() (title, content string, focused bool) {
	n := m.selectedNode()
	if n == nil {
		return m.summaryContent()
	}

	layout := m.scene.Layouts.For(n, sidebarWidth-2)
	var b strings.Builder
	b.WriteString(styles.SidebarLabel.Render("type "))
	b.WriteString(styles.SidebarValue.Render(n.Type))
	b.WriteString("\n\n")

	for _, box := range layout.Boxes {
		if box.Lines == nil {
			b.WriteString(styles.SidebarLabel.Render(box.Item.Label + ": "))
			b.WriteString(styles.SidebarValue.Render(box.Item.Display))
			b.WriteString("\n")
			continue
		}
		b.WriteString(styles.SidebarLabel.Render(box.Item.Label + ":"))
		b.WriteString("\n")
		for _, line := range box.Lines {
			b.WriteString(styles.SidebarValue.Render(line))
			b.WriteString("\n")
		}
	}
	if layout.Empty() {
		b.WriteString(styles.SidebarLabel.Render("no parameters"))
		b.WriteString("\n")
	}

	if len(n.Raw) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SidebarLabel.Render("json:"))
		b.WriteString("\n")
		var buf bytes.Buffer
		if err := json.Indent(&buf, n.Raw, "", "  "); err == nil {
			for _, line := range strings.Split(buf.String(), "\n") {
				b.WriteString(styles.SidebarValue.Render(styles.TruncateString(line, sidebarWidth-2)))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.SidebarLabel.Render("c copy all"))
	return n.DisplayTitle(), b.String(), true
}

func (m Model) summaryContent() (title, content string, focused bool) {
	t := m.tabsMgr.Active()
	if t == nil {
		return "flowlens", "", false
	}
	var b strings.Builder
	b.WriteString(styles.SidebarLabel.Render("path "))
	b.WriteString(styles.SidebarValue.Render(styles.TruncateString(t.SourcePath, sidebarWidth-8)))
	b.WriteString("\n")
	b.WriteString(styles.SidebarLabel.Render("nodes "))
	b.WriteString(styles.SidebarValue.Render(fmt.Sprintf("%d", len(t.Document.Nodes))))
	b.WriteString("\n")
	b.WriteString(styles.SidebarLabel.Render("links "))
	b.WriteString(styles.SidebarValue.Render(fmt.Sprintf("%d", len(t.Document.Links))))
	b.WriteString("\n\n")
	b.WriteString(styles.SidebarLabel.Render("click a node to inspect it"))
	return t.Title, b.String(), false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
