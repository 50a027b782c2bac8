package settings

import (
	"fmt"

	"neobridge/internal/logging"
	"neobridge/internal/rpcvalue"
)

// VarReader reads a global variable from Neovim. *nvim.Nvim satisfies it.
type VarReader interface {
	Var(name string, result any) error
}

// ReadInitialValues loads g:neovide_<name> for every registered setting.
// Variables that are unset or hold incompatible values keep the default.
func (s *Store) ReadInitialValues(r VarReader) {
	for _, name := range s.Names() {
		var raw any
		if err := r.Var(VarPrefix+name, &raw); err != nil {
			s.logger.Debug("setting variable not set",
				logging.String("setting", name),
				logging.Error(err),
			)
			continue
		}
		if err := s.Set(name, rpcvalue.FromAny(raw), "init"); err != nil {
			logging.WarnWithContext(s.logger, "ignoring initial setting value", "setting_invalid",
				logging.String("setting", name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "setting keeps its default"),
			)
		}
	}
}

// WatcherScript returns the Ex commands that install a dictwatcher per
// registered setting. Each watcher forwards changes to channel as a
// setting_changed notification with [name, value] arguments.
func (s *Store) WatcherScript(channel int) []string {
	names := s.Names()
	cmds := make([]string, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, fmt.Sprintf(
			"call dictwatcheradd(g:, '%s%s', {d, k, z -> rpcnotify(%d, 'setting_changed', '%s', get(z, 'new', v:null))})",
			VarPrefix, name, channel, name,
		))
	}
	return cmds
}
