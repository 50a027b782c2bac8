package editor

import (
	"context"
	"log/slog"
	"maps"
	"sort"
	"sync"

	"neobridge/internal/logging"
	"neobridge/internal/redraw"
	"neobridge/internal/rpcvalue"
)

// Cursor is the grid position of the text cursor.
type Cursor struct {
	Grid   int64
	Row    int
	Column int
}

// Colors are the default 24-bit colours; -1 means unset.
type Colors struct {
	Foreground int64
	Background int64
	Special    int64
}

// Window places a grid on the screen.
type Window struct {
	Grid     int64
	StartRow int
	StartCol int
	Width    int
	Height   int
	Hidden   bool
}

// MessagePosition is where the message grid sits.
type MessagePosition struct {
	Grid     int64
	Row      int
	Scrolled bool
	SepChar  string
}

// Snapshot is a deep copy of the editor state at a point in time.
type Snapshot struct {
	Frame              uint64
	Title              string
	Mode               string
	ModeIndex          int64
	Modes              []redraw.ModeInfo
	CursorStyleEnabled bool
	Cursor             Cursor
	DefaultColors      Colors
	Highlights         map[int64]redraw.Style
	Options            map[string]rpcvalue.Value
	Busy               bool
	MouseEnabled       bool
	Grids              map[int64]*Grid
	Windows            map[int64]Window
	Message            *MessagePosition
}

// GridIDs returns the ids of all live grids in ascending order.
func (s Snapshot) GridIDs() []int64 {
	ids := make([]int64, 0, len(s.Grids))
	for id := range s.Grids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Editor applies redraw events. It is safe for concurrent use.
type Editor struct {
	mu      sync.RWMutex
	state   Snapshot
	onFlush func(Snapshot)
	logger  *slog.Logger
}

// New returns an empty editor model.
func New(logger *slog.Logger) *Editor {
	return &Editor{
		state: Snapshot{
			DefaultColors: Colors{Foreground: -1, Background: -1, Special: -1},
			Highlights:    map[int64]redraw.Style{},
			Options:       map[string]rpcvalue.Value{},
			Grids:         map[int64]*Grid{},
			Windows:       map[int64]Window{},
			MouseEnabled:  true,
		},
		logger: logging.NewComponentLogger(logger, "editor"),
	}
}

// OnFlush registers a callback invoked with a snapshot after every flush
// event. The callback runs without the editor lock held.
func (e *Editor) OnFlush(fn func(Snapshot)) {
	e.mu.Lock()
	e.onFlush = fn
	e.mu.Unlock()
}

// Apply updates the model with one event.
func (e *Editor) Apply(ev redraw.Event) {
	e.mu.Lock()
	flushed := e.apply(ev)
	var (
		cb   func(Snapshot)
		snap Snapshot
	)
	if flushed && e.onFlush != nil {
		cb = e.onFlush
		snap = e.snapshotLocked()
	}
	e.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

func (e *Editor) apply(ev redraw.Event) bool {
	s := &e.state
	switch ev := ev.(type) {
	case redraw.SetTitle:
		s.Title = ev.Title
	case redraw.ModeInfoSet:
		s.CursorStyleEnabled = ev.CursorStyleEnabled
		s.Modes = append([]redraw.ModeInfo(nil), ev.Modes...)
	case redraw.OptionSet:
		s.Options[ev.Name] = ev.Value
	case redraw.ModeChange:
		s.Mode, s.ModeIndex = ev.Mode, ev.Index
	case redraw.MouseOn:
		s.MouseEnabled = true
	case redraw.MouseOff:
		s.MouseEnabled = false
	case redraw.BusyStart:
		s.Busy = true
	case redraw.BusyStop:
		s.Busy = false
	case redraw.Flush:
		s.Frame++
		return true
	case redraw.DefaultColorsSet:
		s.DefaultColors = Colors{Foreground: ev.Foreground, Background: ev.Background, Special: ev.Special}
	case redraw.HighlightAttributesDefine:
		s.Highlights[ev.ID] = ev.Style
	case redraw.GridResize:
		if g, ok := s.Grids[ev.Grid]; ok {
			g.resize(int(ev.Width), int(ev.Height))
		} else {
			s.Grids[ev.Grid] = newGrid(ev.Grid, int(ev.Width), int(ev.Height))
		}
	case redraw.GridClear:
		if g := e.grid(ev.Grid, ev.EventName()); g != nil {
			g.clear()
		}
	case redraw.GridDestroy:
		delete(s.Grids, ev.Grid)
		delete(s.Windows, ev.Grid)
	case redraw.GridCursorGoto:
		s.Cursor = Cursor{Grid: ev.Grid, Row: int(ev.Row), Column: int(ev.Column)}
	case redraw.GridScroll:
		if g := e.grid(ev.Grid, ev.EventName()); g != nil {
			g.scroll(int(ev.Top), int(ev.Bottom), int(ev.Left), int(ev.Right), int(ev.Rows))
		}
	case redraw.GridLine:
		if g := e.grid(ev.Grid, ev.EventName()); g != nil {
			applyLine(g, ev)
		}
	case redraw.WindowPosition:
		s.Windows[ev.Grid] = Window{
			Grid:     ev.Grid,
			StartRow: int(ev.StartRow),
			StartCol: int(ev.StartCol),
			Width:    int(ev.Width),
			Height:   int(ev.Height),
		}
	case redraw.WindowHide:
		if w, ok := s.Windows[ev.Grid]; ok {
			w.Hidden = true
			s.Windows[ev.Grid] = w
		}
	case redraw.WindowClose:
		delete(s.Windows, ev.Grid)
	case redraw.MessageSetPosition:
		s.Message = &MessagePosition{Grid: ev.Grid, Row: int(ev.Row), Scrolled: ev.Scrolled, SepChar: ev.SepChar}
	default:
		logging.Trace(context.Background(), e.logger, "ignoring redraw event", logging.String(logging.FieldEvent, ev.EventName()))
	}
	return false
}

func (e *Editor) grid(id int64, event string) *Grid {
	g, ok := e.state.Grids[id]
	if !ok {
		e.logger.Debug("redraw event for unknown grid",
			logging.Int64("grid", id),
			logging.String(logging.FieldEvent, event),
		)
	}
	return g
}

func applyLine(g *Grid, ev redraw.GridLine) {
	row := int(ev.Row)
	col := int(ev.ColumnStart)
	var hl int64
	for _, cell := range ev.Cells {
		if cell.HighlightID != nil {
			hl = *cell.HighlightID
		}
		for i := int64(0); i < cell.Repeat; i++ {
			if !g.set(row, col, Cell{Text: cell.Text, HighlightID: hl}) && col >= g.Width {
				return
			}
			col++
		}
	}
}

// Snapshot returns a deep copy of the current state.
func (e *Editor) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Editor) snapshotLocked() Snapshot {
	s := e.state
	s.Modes = append([]redraw.ModeInfo(nil), s.Modes...)
	s.Highlights = maps.Clone(s.Highlights)
	s.Options = maps.Clone(s.Options)
	s.Windows = maps.Clone(s.Windows)
	s.Grids = make(map[int64]*Grid, len(e.state.Grids))
	for id, g := range e.state.Grids {
		s.Grids[id] = g.clone()
	}
	if s.Message != nil {
		m := *s.Message
		s.Message = &m
	}
	return s
}

// Grid returns the rendered lines of a grid and whether it exists.
func (e *Editor) Grid(id int64) ([]string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.state.Grids[id]
	if !ok {
		return nil, false
	}
	return g.Lines(), true
}

// Frame reports how many flush events have been applied.
func (e *Editor) Frame() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Frame
}
