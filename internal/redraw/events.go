package redraw

import "neobridge/internal/rpcvalue"

// Event is one decoded UI event.
type Event interface {
	EventName() string
}

// Event names as sent by Neovim.
const (
	NameSetTitle           = "set_title"
	NameModeInfoSet        = "mode_info_set"
	NameOptionSet          = "option_set"
	NameModeChange         = "mode_change"
	NameMouseOn            = "mouse_on"
	NameMouseOff           = "mouse_off"
	NameBusyStart          = "busy_start"
	NameBusyStop           = "busy_stop"
	NameFlush              = "flush"
	NameDefaultColorsSet   = "default_colors_set"
	NameHlAttrDefine       = "hl_attr_define"
	NameGridResize         = "grid_resize"
	NameGridClear          = "grid_clear"
	NameGridDestroy        = "grid_destroy"
	NameGridCursorGoto     = "grid_cursor_goto"
	NameGridScroll         = "grid_scroll"
	NameGridLine           = "grid_line"
	NameWindowPosition     = "win_pos"
	NameWindowHide         = "win_hide"
	NameWindowClose        = "win_close"
	NameMessageSetPosition = "msg_set_pos"
)

type SetTitle struct {
	Title string
}

// ModeInfo describes the cursor shape for one editor mode.
type ModeInfo struct {
	Name         string
	ShortName    string
	CursorShape  string
	CellPercent  int64
	AttrID       int64
	BlinkWait    int64
	BlinkOn      int64
	BlinkOff     int64
	HasCellWidth bool
}

type ModeInfoSet struct {
	CursorStyleEnabled bool
	Modes              []ModeInfo
}

type OptionSet struct {
	Name  string
	Value rpcvalue.Value
}

type ModeChange struct {
	Mode  string
	Index int64
}

type (
	MouseOn   struct{}
	MouseOff  struct{}
	BusyStart struct{}
	BusyStop  struct{}
	Flush     struct{}
)

// DefaultColorsSet carries 24-bit colours; -1 means "not set".
type DefaultColorsSet struct {
	Foreground int64
	Background int64
	Special    int64
}

// Style is the rgb attribute set of a highlight group.
type Style struct {
	Foreground    *int64
	Background    *int64
	Special       *int64
	Reverse       bool
	Italic        bool
	Bold          bool
	Strikethrough bool
	Underline     bool
	Undercurl     bool
	Blend         int64
}

type HighlightAttributesDefine struct {
	ID    int64
	Style Style
}

type GridResize struct {
	Grid   int64
	Width  int64
	Height int64
}

type GridClear struct {
	Grid int64
}

type GridDestroy struct {
	Grid int64
}

type GridCursorGoto struct {
	Grid   int64
	Row    int64
	Column int64
}

// GridScroll moves the region [Top, Bottom) x [Left, Right) by Rows. Positive
// Rows scroll content up.
type GridScroll struct {
	Grid   int64
	Top    int64
	Bottom int64
	Left   int64
	Right  int64
	Rows   int64
	Cols   int64
}

// Cell is one entry of a grid_line batch. A nil HighlightID reuses the id of
// the previous cell in the same line.
type Cell struct {
	Text        string
	HighlightID *int64
	Repeat      int64
}

type GridLine struct {
	Grid        int64
	Row         int64
	ColumnStart int64
	Cells       []Cell
}

type WindowPosition struct {
	Grid     int64
	Window   rpcvalue.Value
	StartRow int64
	StartCol int64
	Width    int64
	Height   int64
}

type WindowHide struct {
	Grid int64
}

type WindowClose struct {
	Grid int64
}

type MessageSetPosition struct {
	Grid     int64
	Row      int64
	Scrolled bool
	SepChar  string
}

func (SetTitle) EventName() string                  { return NameSetTitle }
func (ModeInfoSet) EventName() string               { return NameModeInfoSet }
func (OptionSet) EventName() string                 { return NameOptionSet }
func (ModeChange) EventName() string                { return NameModeChange }
func (MouseOn) EventName() string                   { return NameMouseOn }
func (MouseOff) EventName() string                  { return NameMouseOff }
func (BusyStart) EventName() string                 { return NameBusyStart }
func (BusyStop) EventName() string                  { return NameBusyStop }
func (Flush) EventName() string                     { return NameFlush }
func (DefaultColorsSet) EventName() string          { return NameDefaultColorsSet }
func (HighlightAttributesDefine) EventName() string { return NameHlAttrDefine }
func (GridResize) EventName() string                { return NameGridResize }
func (GridClear) EventName() string                 { return NameGridClear }
func (GridDestroy) EventName() string               { return NameGridDestroy }
func (GridCursorGoto) EventName() string            { return NameGridCursorGoto }
func (GridScroll) EventName() string                { return NameGridScroll }
func (GridLine) EventName() string                  { return NameGridLine }
func (WindowPosition) EventName() string            { return NameWindowPosition }
func (WindowHide) EventName() string                { return NameWindowHide }
func (WindowClose) EventName() string               { return NameWindowClose }
func (MessageSetPosition) EventName() string        { return NameMessageSetPosition }
