package settings

import "neobridge/internal/rpcvalue"

// Defaults lists the settings the front-end understands.
func Defaults() []Setting {
	return []Setting{
		{Name: "refresh_rate", Kind: KindInt, Default: rpcvalue.Int(60), Description: "frames per second while animating"},
		{Name: "scroll_animation_length", Kind: KindFloat, Default: rpcvalue.Float(0.3), Description: "seconds a scroll animation takes"},
		{Name: "cursor_animation_length", Kind: KindFloat, Default: rpcvalue.Float(0.13), Description: "seconds the cursor takes to travel"},
		{Name: "cursor_vfx_mode", Kind: KindString, Default: rpcvalue.String(""), Description: "cursor particle effect"},
		{Name: "transparency", Kind: KindFloat, Default: rpcvalue.Float(1.0), Description: "window opacity between 0 and 1"},
		{Name: "hide_mouse_when_typing", Kind: KindBool, Default: rpcvalue.Bool(false), Description: "hide the pointer while typing"},
		{Name: "no_idle", Kind: KindBool, Default: rpcvalue.Bool(false), Description: "keep redrawing when idle"},
		{Name: "fullscreen", Kind: KindBool, Default: rpcvalue.Bool(false), Description: "start in fullscreen"},
		{Name: "remember_window_size", Kind: KindBool, Default: rpcvalue.Bool(true), Description: "restore the last window size"},
	}
}

// RegisterDefaults registers every setting from Defaults.
func (s *Store) RegisterDefaults() error {
	for _, setting := range Defaults() {
		if err := s.Register(setting); err != nil {
			return err
		}
	}
	return nil
}
