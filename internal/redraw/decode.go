package redraw

import (
	"errors"
	"fmt"

	"neobridge/internal/rpcvalue"
)

// ParseError reports a malformed event tuple.
type ParseError struct {
	Event  string
	Index  int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Event == "" {
		return fmt.Sprintf("redraw group %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("redraw %s #%d: %s", e.Event, e.Index, e.Reason)
}

// Result is the outcome of decoding one redraw notification.
type Result struct {
	Events  []Event
	Skipped []string
}

// Parse decodes a redraw notification. Each argument is an event group of the
// form [name, args1, args2, ...]. Unknown event names are skipped. Malformed
// tuples are reported in the joined error while the remaining tuples are
// still decoded.
func Parse(args []rpcvalue.Value) ([]Event, error) {
	res, err := Decode(args)
	return res.Events, err
}

// Decode is Parse but also reports the names of skipped event groups.
func Decode(args []rpcvalue.Value) (Result, error) {
	var (
		res  Result
		errs []error
	)
	for gi, group := range args {
		items, ok := group.AsArray()
		if !ok || len(items) == 0 {
			errs = append(errs, &ParseError{Index: gi, Reason: "event group is not a non-empty array"})
			continue
		}
		name, ok := items[0].AsString()
		if !ok {
			errs = append(errs, &ParseError{Index: gi, Reason: "event name is not a string"})
			continue
		}
		parse, known := parsers[name]
		if !known {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		for ti, raw := range items[1:] {
			tuple, ok := raw.AsArray()
			if !ok {
				errs = append(errs, &ParseError{Event: name, Index: ti, Reason: "arguments are not an array"})
				continue
			}
			r := &tupleReader{vals: tuple}
			ev := parse(r)
			if r.err != nil {
				errs = append(errs, &ParseError{Event: name, Index: ti, Reason: r.err.Error()})
				continue
			}
			res.Events = append(res.Events, ev)
		}
	}
	return res, errors.Join(errs...)
}

var parsers = map[string]func(*tupleReader) Event{
	NameSetTitle: func(r *tupleReader) Event {
		return SetTitle{Title: r.str(0)}
	},
	NameModeInfoSet: parseModeInfoSet,
	NameOptionSet: func(r *tupleReader) Event {
		return OptionSet{Name: r.str(0), Value: r.value(1)}
	},
	NameModeChange: func(r *tupleReader) Event {
		return ModeChange{Mode: r.str(0), Index: r.int(1)}
	},
	NameMouseOn:   func(*tupleReader) Event { return MouseOn{} },
	NameMouseOff:  func(*tupleReader) Event { return MouseOff{} },
	NameBusyStart: func(*tupleReader) Event { return BusyStart{} },
	NameBusyStop:  func(*tupleReader) Event { return BusyStop{} },
	NameFlush:     func(*tupleReader) Event { return Flush{} },
	NameDefaultColorsSet: func(r *tupleReader) Event {
		return DefaultColorsSet{Foreground: r.int(0), Background: r.int(1), Special: r.int(2)}
	},
	NameHlAttrDefine: parseHighlight,
	NameGridResize: func(r *tupleReader) Event {
		return GridResize{Grid: r.int(0), Width: r.int(1), Height: r.int(2)}
	},
	NameGridClear: func(r *tupleReader) Event {
		return GridClear{Grid: r.int(0)}
	},
	NameGridDestroy: func(r *tupleReader) Event {
		return GridDestroy{Grid: r.int(0)}
	},
	NameGridCursorGoto: func(r *tupleReader) Event {
		return GridCursorGoto{Grid: r.int(0), Row: r.int(1), Column: r.int(2)}
	},
	NameGridScroll: func(r *tupleReader) Event {
		return GridScroll{
			Grid:   r.int(0),
			Top:    r.int(1),
			Bottom: r.int(2),
			Left:   r.int(3),
			Right:  r.int(4),
			Rows:   r.int(5),
			Cols:   r.int(6),
		}
	},
	NameGridLine: parseGridLine,
	NameWindowPosition: func(r *tupleReader) Event {
		return WindowPosition{
			Grid:     r.int(0),
			Window:   r.value(1),
			StartRow: r.int(2),
			StartCol: r.int(3),
			Width:    r.int(4),
			Height:   r.int(5),
		}
	},
	NameWindowHide: func(r *tupleReader) Event {
		return WindowHide{Grid: r.int(0)}
	},
	NameWindowClose: func(r *tupleReader) Event {
		return WindowClose{Grid: r.int(0)}
	},
	NameMessageSetPosition: func(r *tupleReader) Event {
		ev := MessageSetPosition{Grid: r.int(0), Row: r.int(1), Scrolled: r.bool(2)}
		if len(r.vals) > 3 {
			ev.SepChar = r.str(3)
		}
		return ev
	},
}

func parseModeInfoSet(r *tupleReader) Event {
	ev := ModeInfoSet{CursorStyleEnabled: r.bool(0)}
	for _, raw := range r.array(1) {
		if raw.Kind() != rpcvalue.KindMap {
			r.fail(errors.New("mode info entry is not a map"))
			return nil
		}
		mode := ModeInfo{
			Name:        lookupString(raw, "name"),
			ShortName:   lookupString(raw, "short_name"),
			CursorShape: lookupString(raw, "cursor_shape"),
			CellPercent: lookupInt(raw, "cell_percentage"),
			AttrID:      lookupInt(raw, "attr_id"),
			BlinkWait:   lookupInt(raw, "blinkwait"),
			BlinkOn:     lookupInt(raw, "blinkon"),
			BlinkOff:    lookupInt(raw, "blinkoff"),
		}
		_, mode.HasCellWidth = raw.Lookup("cell_percentage")
		ev.Modes = append(ev.Modes, mode)
	}
	return ev
}

func parseHighlight(r *tupleReader) Event {
	ev := HighlightAttributesDefine{ID: r.int(0)}
	attrs := r.value(1)
	if r.err != nil {
		return nil
	}
	if attrs.Kind() != rpcvalue.KindMap {
		r.fail(errors.New("rgb attributes are not a map"))
		return nil
	}
	ev.Style = Style{
		Foreground:    lookupOptionalInt(attrs, "foreground"),
		Background:    lookupOptionalInt(attrs, "background"),
		Special:       lookupOptionalInt(attrs, "special"),
		Reverse:       lookupBool(attrs, "reverse"),
		Italic:        lookupBool(attrs, "italic"),
		Bold:          lookupBool(attrs, "bold"),
		Strikethrough: lookupBool(attrs, "strikethrough"),
		Underline:     lookupBool(attrs, "underline"),
		Undercurl:     lookupBool(attrs, "undercurl"),
		Blend:         lookupInt(attrs, "blend"),
	}
	return ev
}

func parseGridLine(r *tupleReader) Event {
	ev := GridLine{Grid: r.int(0), Row: r.int(1), ColumnStart: r.int(2)}
	cells := r.array(3)
	if r.err != nil {
		return nil
	}
	ev.Cells = make([]Cell, 0, len(cells))
	for i, raw := range cells {
		parts, ok := raw.AsArray()
		if !ok || len(parts) == 0 {
			r.fail(fmt.Errorf("cell %d is not a non-empty array", i))
			return nil
		}
		text, ok := parts[0].AsString()
		if !ok {
			r.fail(fmt.Errorf("cell %d text is not a string", i))
			return nil
		}
		cell := Cell{Text: text, Repeat: 1}
		if len(parts) > 1 {
			id, ok := parts[1].AsInt()
			if !ok {
				r.fail(fmt.Errorf("cell %d highlight id is not an integer", i))
				return nil
			}
			cell.HighlightID = &id
		}
		if len(parts) > 2 {
			n, ok := parts[2].AsInt()
			if !ok || n < 0 {
				r.fail(fmt.Errorf("cell %d repeat is not a non-negative integer", i))
				return nil
			}
			cell.Repeat = n
		}
		ev.Cells = append(ev.Cells, cell)
	}
	return ev
}

// tupleReader extracts positional arguments and remembers the first failure.
type tupleReader struct {
	vals []rpcvalue.Value
	err  error
}

func (r *tupleReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *tupleReader) at(i int) (rpcvalue.Value, bool) {
	if r.err != nil {
		return rpcvalue.Value{}, false
	}
	if i >= len(r.vals) {
		r.err = fmt.Errorf("missing argument %d", i)
		return rpcvalue.Value{}, false
	}
	return r.vals[i], true
}

func (r *tupleReader) value(i int) rpcvalue.Value {
	v, _ := r.at(i)
	return v
}

func (r *tupleReader) int(i int) int64 {
	v, ok := r.at(i)
	if !ok {
		return 0
	}
	n, ok := v.AsInt()
	if !ok {
		r.err = fmt.Errorf("argument %d: expected integer, got %s", i, v.Kind())
	}
	return n
}

func (r *tupleReader) str(i int) string {
	v, ok := r.at(i)
	if !ok {
		return ""
	}
	s, ok := v.AsString()
	if !ok {
		r.err = fmt.Errorf("argument %d: expected string, got %s", i, v.Kind())
	}
	return s
}

func (r *tupleReader) bool(i int) bool {
	v, ok := r.at(i)
	if !ok {
		return false
	}
	b, ok := v.AsBool()
	if !ok {
		r.err = fmt.Errorf("argument %d: expected bool, got %s", i, v.Kind())
	}
	return b
}

func (r *tupleReader) array(i int) []rpcvalue.Value {
	v, ok := r.at(i)
	if !ok {
		return nil
	}
	arr, ok := v.AsArray()
	if !ok {
		r.err = fmt.Errorf("argument %d: expected array, got %s", i, v.Kind())
	}
	return arr
}

func lookupString(m rpcvalue.Value, key string) string {
	v, _ := m.Lookup(key)
	s, _ := v.AsString()
	return s
}

func lookupInt(m rpcvalue.Value, key string) int64 {
	v, _ := m.Lookup(key)
	n, _ := v.AsInt()
	return n
}

func lookupOptionalInt(m rpcvalue.Value, key string) *int64 {
	v, ok := m.Lookup(key)
	if !ok {
		return nil
	}
	n, ok := v.AsInt()
	if !ok {
		return nil
	}
	return &n
}

func lookupBool(m rpcvalue.Value, key string) bool {
	v, _ := m.Lookup(key)
	b, _ := v.AsBool()
	return b
}
