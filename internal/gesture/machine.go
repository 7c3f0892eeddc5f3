// Package gesture disambiguates raw pointer input into pan, node-drag, and
// click-to-deselect gestures. The machine is pure: it never touches the
// document, the camera, or the selection — each event returns an Op the
// caller applies.
//
// Precedence lives in one dispatch table instead of layered handlers so the
// rules stay auditable: a middle button or a held space modifier always
// pans; a primary press on a selected node's title bar arms a node drag; a
// primary press on empty space arms both a pan and a deselect click, and
// movement past the threshold resolves which one wins.
package gesture

// DragThresholdSq is the squared screen-space displacement a candidate must
// exceed before it becomes an active drag. Below it, presses still count as
// clicks or text selection.
const DragThresholdSq = 9.0

// Button identifies the pressed pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonOther
)

// DragKind distinguishes what an active drag moves.
type DragKind int

const (
	DragPan DragKind = iota
	DragNode
)

// State is the machine's gesture phase.
type State int

const (
	StateIdle State = iota
	StateCandidate
	StateActive
)

// Op tells the caller what to do in response to an event.
type Op int

const (
	// OpNone requires no action.
	OpNone Op = iota
	// OpBeginPan starts a pan; the caller snapshots the viewport offset.
	OpBeginPan
	// OpBeginNodeDrag starts a node drag; the caller snapshots the
	// position of every selected node.
	OpBeginNodeDrag
	// OpPan applies the incremental screen displacement to the viewport.
	OpPan
	// OpDragNodes moves the snapshotted nodes by the total screen
	// displacement since the drag began.
	OpDragNodes
	// OpDeselect clears the selection and restores the summary view.
	OpDeselect
	// OpEndDrag finishes an active drag; the caller restores the cursor.
	OpEndDrag
)

// Result is the outcome of feeding one event to the machine. Dx and Dy are
// screen-space; for OpPan they are incremental since the last move, for
// OpBeginPan, OpBeginNodeDrag, and OpDragNodes they are measured from the
// gesture's start point.
type Result struct {
	Op     Op
	Dx, Dy float64
}

var none = Result{Op: OpNone}

// Hit describes what lies under the pointer at press time, in world terms
// the machine itself never computes.
type Hit struct {
	OverNode     bool
	NodeSelected bool
	InTitleBar   bool
	OverGroup    bool
	// OverOverlay marks presses on the selectable parameter overlay; the
	// machine ignores them so text selection never turns into a pan.
	OverOverlay bool
}

// Machine is the gesture state. The zero value is idle.
type Machine struct {
	state State
	kind  DragKind

	startX, startY float64
	lastX, lastY   float64

	// The deselect click is an independent track armed alongside an
	// empty-space pan candidate.
	clickArmed     bool
	clickX, clickY float64
}

// State returns the current gesture phase.
func (m *Machine) State() State { return m.state }

// ActiveKind returns what an active drag moves. Only meaningful while
// State() is StateActive.
func (m *Machine) ActiveKind() DragKind { return m.kind }

// PointerDown feeds a button press. Only one gesture is tracked at a time;
// a press during an active gesture is ignored.
func (m *Machine) PointerDown(x, y float64, btn Button, spaceHeld bool, hit Hit) Result {
	if m.state != StateIdle {
		return none
	}
	if hit.OverOverlay {
		return none
	}

	// Middle button or the space modifier pans immediately, no threshold.
	if btn == ButtonMiddle || (btn == ButtonPrimary && spaceHeld) {
		m.state = StateActive
		m.kind = DragPan
		m.startX, m.startY = x, y
		m.lastX, m.lastY = x, y
		return Result{Op: OpBeginPan}
	}
	if btn != ButtonPrimary {
		return none
	}

	switch {
	case hit.OverNode && hit.NodeSelected && hit.InTitleBar:
		m.state = StateCandidate
		m.kind = DragNode
		m.startX, m.startY = x, y
	case !hit.OverNode && !hit.OverGroup:
		m.state = StateCandidate
		m.kind = DragPan
		m.startX, m.startY = x, y
		m.clickArmed = true
		m.clickX, m.clickY = x, y
	default:
		// Unselected node, selected node body, or group: selection
		// handling belongs to the caller's click path.
	}
	return none
}

// PointerMove feeds pointer motion.
func (m *Machine) PointerMove(x, y float64) Result {
	switch m.state {
	case StateActive:
		if m.kind == DragPan {
			dx, dy := x-m.lastX, y-m.lastY
			m.lastX, m.lastY = x, y
			return Result{Op: OpPan, Dx: dx, Dy: dy}
		}
		return Result{Op: OpDragNodes, Dx: x - m.startX, Dy: y - m.startY}

	case StateCandidate:
		dx, dy := x-m.startX, y-m.startY
		if dx*dx+dy*dy < DragThresholdSq {
			return none
		}
		m.state = StateActive
		m.lastX, m.lastY = x, y
		m.clickArmed = false
		if m.kind == DragPan {
			return Result{Op: OpBeginPan, Dx: dx, Dy: dy}
		}
		return Result{Op: OpBeginNodeDrag, Dx: dx, Dy: dy}

	default:
		return none
	}
}

// PointerUp feeds a button release, ending any gesture. A deselect fires
// only when the armed click never moved past the threshold and no drag was
// promoted.
func (m *Machine) PointerUp(x, y float64) Result {
	wasActive := m.state == StateActive
	clickArmed := m.clickArmed
	cx, cy := m.clickX, m.clickY
	m.reset()

	if wasActive {
		return Result{Op: OpEndDrag}
	}
	if clickArmed {
		dx, dy := x-cx, y-cy
		if dx*dx+dy*dy < DragThresholdSq {
			return Result{Op: OpDeselect}
		}
	}
	return none
}

// Cancel aborts any gesture without firing a click.
func (m *Machine) Cancel() Result {
	wasActive := m.state == StateActive
	m.reset()
	if wasActive {
		return Result{Op: OpEndDrag}
	}
	return none
}

// Blur resets everything unconditionally. A focus loss can swallow the
// pointer-up, so any state left behind here would wedge the next gesture.
func (m *Machine) Blur() Result {
	return m.Cancel()
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.clickArmed = false
}
