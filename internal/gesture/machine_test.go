package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var (
	emptySpace   = Hit{}
	selectedBar  = Hit{OverNode: true, NodeSelected: true, InTitleBar: true}
	selectedBody = Hit{OverNode: true, NodeSelected: true}
	unselected   = Hit{OverNode: true, InTitleBar: true}
	group        = Hit{OverGroup: true}
	overlay      = Hit{OverOverlay: true}
)

func TestMiddleButtonPansImmediately(t *testing.T) {
	var m Machine
	res := m.PointerDown(10, 10, ButtonMiddle, false, selectedBody)

	assert.Equal(t, OpBeginPan, res.Op, "middle button needs no threshold")
	assert.Equal(t, StateActive, m.State(), "pan is active at once")
	assert.Equal(t, DragPan, m.ActiveKind(), "active drag is a pan")
}

func TestSpaceModifierPansImmediately(t *testing.T) {
	var m Machine
	res := m.PointerDown(10, 10, ButtonPrimary, true, unselected)

	assert.Equal(t, OpBeginPan, res.Op, "space plus primary pans over anything")

	move := m.PointerMove(14, 13)
	assert.Equal(t, OpPan, move.Op, "active pan tracks movement")
	assert.Equal(t, 4.0, move.Dx, "pan delta is incremental")
	assert.Equal(t, 3.0, move.Dy, "pan delta is incremental")

	move = m.PointerMove(15, 13)
	assert.Equal(t, 1.0, move.Dx, "second move measures from the previous point")
}

func TestTitleBarDragThreshold(t *testing.T) {
	var m Machine
	res := m.PointerDown(100, 100, ButtonPrimary, false, selectedBar)
	assert.Equal(t, OpNone, res.Op, "candidate arms silently")
	assert.Equal(t, StateCandidate, m.State(), "press arms a node-drag candidate")

	// 2,2 gives squared displacement 8, below the threshold.
	res = m.PointerMove(102, 102)
	assert.Equal(t, OpNone, res.Op, "sub-threshold motion must not promote")
	assert.Equal(t, StateCandidate, m.State(), "candidate survives small motion")

	// 3,3 gives squared displacement 18, at/over the threshold.
	res = m.PointerMove(103, 103)
	assert.Equal(t, OpBeginNodeDrag, res.Op, "threshold motion promotes the drag")
	assert.Equal(t, 3.0, res.Dx, "promotion reports displacement from the start")
	assert.Equal(t, StateActive, m.State(), "drag is now active")
	assert.Equal(t, DragNode, m.ActiveKind(), "active drag moves nodes")

	res = m.PointerMove(110, 100)
	assert.Equal(t, OpDragNodes, res.Op, "active node drag tracks movement")
	assert.Equal(t, 10.0, res.Dx, "node displacement is total from the start")
	assert.Equal(t, 0.0, res.Dy, "node displacement is total from the start")

	res = m.PointerUp(110, 100)
	assert.Equal(t, OpEndDrag, res.Op, "release ends the drag")
	assert.Equal(t, StateIdle, m.State(), "machine returns to idle")
}

func TestEmptySpaceArmsPanAndClick(t *testing.T) {
	var m Machine
	m.PointerDown(50, 50, ButtonPrimary, false, emptySpace)
	assert.Equal(t, StateCandidate, m.State(), "empty press arms a pan candidate")

	res := m.PointerMove(60, 50)
	assert.Equal(t, OpBeginPan, res.Op, "movement promotes the pan")

	res = m.PointerUp(60, 50)
	assert.Equal(t, OpEndDrag, res.Op, "promotion consumed the click candidate")
}

func TestClickToDeselect(t *testing.T) {
	var m Machine
	m.PointerDown(50, 50, ButtonPrimary, false, emptySpace)

	res := m.PointerUp(51, 51)
	assert.Equal(t, OpDeselect, res.Op, "a still click on empty space deselects")
	assert.Equal(t, StateIdle, m.State(), "machine returns to idle")
}

func TestSubThresholdMotionKeepsClick(t *testing.T) {
	var m Machine
	m.PointerDown(50, 50, ButtonPrimary, false, emptySpace)

	assert.Equal(t, OpNone, m.PointerMove(52, 52).Op, "8 < 9 keeps the candidate")
	assert.Equal(t, OpDeselect, m.PointerUp(52, 52).Op, "the click still fires")
}

func TestNoCandidateCases(t *testing.T) {
	tests := []struct {
		name string
		hit  Hit
	}{
		{"unselected node", unselected},
		{"selected node body", selectedBody},
		{"group", group},
		{"overlay", overlay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Machine
			res := m.PointerDown(10, 10, ButtonPrimary, false, tt.hit)
			assert.Equal(t, OpNone, res.Op, "no drag candidate should arm")
			assert.Equal(t, StateIdle, m.State(), "machine stays idle")
			assert.Equal(t, OpNone, m.PointerUp(10, 10).Op, "release does nothing")
		})
	}
}

func TestOtherButtonIgnored(t *testing.T) {
	var m Machine
	assert.Equal(t, OpNone, m.PointerDown(0, 0, ButtonOther, false, emptySpace).Op,
		"secondary buttons are not gestures")
	assert.Equal(t, StateIdle, m.State(), "machine stays idle")
}

func TestDownDuringActiveIgnored(t *testing.T) {
	var m Machine
	m.PointerDown(0, 0, ButtonMiddle, false, emptySpace)

	res := m.PointerDown(5, 5, ButtonPrimary, false, selectedBar)
	assert.Equal(t, OpNone, res.Op, "one gesture at a time")
	assert.Equal(t, DragPan, m.ActiveKind(), "the original pan keeps ownership")
}

func TestBlurResetsEverything(t *testing.T) {
	var m Machine
	m.PointerDown(0, 0, ButtonMiddle, false, emptySpace)

	res := m.Blur()
	assert.Equal(t, OpEndDrag, res.Op, "blur ends the active drag")
	assert.Equal(t, StateIdle, m.State(), "blur resets to idle")

	m.PointerDown(0, 0, ButtonPrimary, false, emptySpace)
	assert.Equal(t, OpNone, m.Blur().Op, "blur on a bare candidate is silent")
	assert.Equal(t, OpNone, m.PointerUp(0, 0).Op, "no stale click survives a blur")
}

func TestCancelDropsClick(t *testing.T) {
	var m Machine
	m.PointerDown(0, 0, ButtonPrimary, false, emptySpace)

	assert.Equal(t, OpNone, m.Cancel().Op, "cancel is silent for candidates")
	assert.Equal(t, OpNone, m.PointerUp(0, 0).Op, "the click candidate is gone")
}

func TestThresholdBoundaryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dx := rapid.IntRange(-5, 5).Draw(t, "dx")
		dy := rapid.IntRange(-5, 5).Draw(t, "dy")

		var m Machine
		m.PointerDown(0, 0, ButtonPrimary, false, selectedBar)
		res := m.PointerMove(float64(dx), float64(dy))

		if float64(dx*dx+dy*dy) < DragThresholdSq {
			assert.Equal(t, OpNone, res.Op, "below threshold never promotes")
			assert.Equal(t, StateCandidate, m.State(), "candidate persists")
		} else {
			assert.Equal(t, OpBeginNodeDrag, res.Op, "at or above threshold always promotes")
			assert.Equal(t, StateActive, m.State(), "drag becomes active")
		}
	})
}
