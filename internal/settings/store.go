package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"neobridge/internal/logging"
	"neobridge/internal/rpcvalue"
)

// VarPrefix is the prefix of the global variables backing each setting.
const VarPrefix = "neovide_"

// Kind is the value type a setting accepts.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Setting describes a registered setting.
type Setting struct {
	Name        string
	Kind        Kind
	Default     rpcvalue.Value
	Description string
}

var (
	ErrUnknownSetting = errors.New("unknown setting")
	ErrDuplicate      = errors.New("setting already registered")
)

// Store holds the current value of every registered setting.
type Store struct {
	mu       sync.RWMutex
	settings map[string]Setting
	values   map[string]rpcvalue.Value
	notifier *notifier
	logger   *slog.Logger
}

// New returns an empty store.
func New(logger *slog.Logger) *Store {
	return &Store{
		settings: make(map[string]Setting),
		values:   make(map[string]rpcvalue.Value),
		notifier: newNotifier(),
		logger:   logging.NewComponentLogger(logger, "settings"),
	}
}

// Register adds a setting with its default value.
func (s *Store) Register(setting Setting) error {
	name := strings.TrimPrefix(strings.TrimSpace(setting.Name), VarPrefix)
	if name == "" {
		return errors.New("setting name is required")
	}
	def, err := coerce(setting.Kind, setting.Default)
	if err != nil {
		return fmt.Errorf("setting %q default: %w", name, err)
	}
	setting.Name = name
	setting.Default = def

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.settings[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	s.settings[name] = setting
	s.values[name] = def
	return nil
}

// HandleChangedNotification applies a setting_changed notification whose
// arguments are [name, value]. Bad notifications are logged and dropped.
func (s *Store) HandleChangedNotification(args []rpcvalue.Value) {
	if len(args) < 2 {
		logging.WarnWithContext(s.logger, "setting_changed notification missing arguments", "setting_invalid",
			logging.Int("arg_count", len(args)),
			logging.String(logging.FieldImpact, "setting change ignored"),
		)
		return
	}
	name, ok := args[0].AsString()
	if !ok {
		logging.WarnWithContext(s.logger, "setting_changed name is not a string", "setting_invalid",
			logging.String("name_kind", args[0].Kind().String()),
			logging.String(logging.FieldImpact, "setting change ignored"),
		)
		return
	}
	if err := s.Set(name, args[1], "neovim"); err != nil {
		logging.WarnWithContext(s.logger, "setting change rejected", "setting_invalid",
			logging.String("setting", name),
			logging.String("value", args[1].String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the type of g:"+VarPrefix+strings.TrimPrefix(name, VarPrefix)),
			logging.String(logging.FieldImpact, "setting keeps its previous value"),
		)
	}
}

// Set stores a new value for name and notifies observers when it changed.
// A nil value, sent when the g: variable is unlet, restores the default.
func (s *Store) Set(name string, value rpcvalue.Value, source string) error {
	name = strings.TrimPrefix(name, VarPrefix)

	s.mu.Lock()
	setting, ok := s.settings[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownSetting, name)
	}
	coerced, err := setting.Default, error(nil)
	if !value.IsNil() {
		coerced, err = coerce(setting.Kind, value)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	old := s.values[name]
	s.values[name] = coerced
	s.mu.Unlock()

	if old.Equal(coerced) {
		return nil
	}
	s.logger.Debug("setting updated",
		logging.String("setting", name),
		logging.String("value", coerced.String()),
		logging.String("source", source),
	)
	s.notifier.deliver(Change{Name: name, Old: old, New: coerced, Source: source})
	return nil
}

// Subscribe registers an observer for every setting.
func (s *Store) Subscribe(observer Observer) *Subscription {
	return s.notifier.subscribe("", observer)
}

// SubscribeName registers an observer for a single setting.
func (s *Store) SubscribeName(name string, observer Observer) *Subscription {
	return s.notifier.subscribe(strings.TrimPrefix(name, VarPrefix), observer)
}

// Get returns the current value of name.
func (s *Store) Get(name string) (rpcvalue.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[strings.TrimPrefix(name, VarPrefix)]
	return v, ok
}

func (s *Store) Bool(name string) bool {
	v, _ := s.Get(name)
	b, _ := v.AsBool()
	return b
}

func (s *Store) Int(name string) int64 {
	v, _ := s.Get(name)
	n, _ := v.AsInt()
	return n
}

func (s *Store) Float(name string) float64 {
	v, _ := s.Get(name)
	f, _ := v.AsFloat()
	return f
}

func (s *Store) String(name string) string {
	v, _ := s.Get(name)
	str, _ := v.AsString()
	return str
}

// Names returns the registered setting names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.settings))
	for name := range s.settings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Settings returns the registered definitions sorted by name.
func (s *Store) Settings() []Setting {
	names := s.Names()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Setting, 0, len(names))
	for _, name := range names {
		out = append(out, s.settings[name])
	}
	return out
}

func coerce(kind Kind, v rpcvalue.Value) (rpcvalue.Value, error) {
	switch kind {
	case KindBool:
		if b, ok := v.AsBool(); ok {
			return rpcvalue.Bool(b), nil
		}
		if n, ok := v.AsInt(); ok && (n == 0 || n == 1) {
			return rpcvalue.Bool(n == 1), nil
		}
	case KindInt:
		if n, ok := v.AsInt(); ok {
			return rpcvalue.Int(n), nil
		}
		if v.Kind() == rpcvalue.KindFloat {
			f, _ := v.AsFloat()
			if f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64 {
				return rpcvalue.Int(int64(f)), nil
			}
		}
	case KindFloat:
		if f, ok := v.AsFloat(); ok {
			return rpcvalue.Float(f), nil
		}
	case KindString:
		if str, ok := v.AsString(); ok {
			return rpcvalue.String(str), nil
		}
	}
	return rpcvalue.Value{}, fmt.Errorf("cannot use %s value %s as %s", v.Kind(), v, kind)
}
