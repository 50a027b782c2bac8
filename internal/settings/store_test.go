package settings_test

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"neobridge/internal/rpcvalue"
	"neobridge/internal/settings"
	"neobridge/internal/testsupport"
)

func newStore(t *testing.T) (*settings.Store, *testsupport.LogRecorder) {
	t.Helper()
	rec := testsupport.NewLogRecorder()
	store := settings.New(rec.Logger())
	if err := store.RegisterDefaults(); err != nil {
		t.Fatalf("RegisterDefaults: %v", err)
	}
	return store, rec
}

func TestDefaults(t *testing.T) {
	store, _ := newStore(t)
	if got := store.Int("refresh_rate"); got != 60 {
		t.Fatalf("refresh_rate = %d", got)
	}
	if got := store.Float("transparency"); got != 1.0 {
		t.Fatalf("transparency = %v", got)
	}
	if !store.Bool("remember_window_size") {
		t.Fatal("remember_window_size should default to true")
	}
	if len(store.Names()) != len(settings.Defaults()) {
		t.Fatalf("Names() = %v", store.Names())
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	store, _ := newStore(t)
	err := store.Register(settings.Setting{Name: "fullscreen", Kind: settings.KindBool, Default: rpcvalue.Bool(true)})
	if !errors.Is(err, settings.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	err = store.Register(settings.Setting{Name: "bad", Kind: settings.KindInt, Default: rpcvalue.String("x")})
	if err == nil {
		t.Fatal("expected ill-typed default to be rejected")
	}
}

func TestHandleChangedNotificationCoerces(t *testing.T) {
	tests := []struct {
		name  string
		value rpcvalue.Value
		check func(*settings.Store) bool
		setup func(*testing.T, *settings.Store)
	}{
		{"transparency", rpcvalue.Int(0), func(s *settings.Store) bool { return s.Float("transparency") == 0 }, nil},
		{"fullscreen", rpcvalue.Int(1), func(s *settings.Store) bool { return s.Bool("fullscreen") }, nil},
		{"no_idle", rpcvalue.Bool(true), func(s *settings.Store) bool { return s.Bool("no_idle") }, nil},
		{"refresh_rate", rpcvalue.Float(144), func(s *settings.Store) bool { return s.Int("refresh_rate") == 144 }, nil},
		{"cursor_vfx_mode", rpcvalue.Binary([]byte("railgun")), func(s *settings.Store) bool { return s.String("cursor_vfx_mode") == "railgun" }, nil},
		{"neovide_refresh_rate", rpcvalue.Uint(30), func(s *settings.Store) bool { return s.Int("refresh_rate") == 30 }, nil},
		{"neovide_transparency", rpcvalue.Nil(), func(s *settings.Store) bool { return s.Float("transparency") == 1 }, func(t *testing.T, s *settings.Store) {
			if err := s.Set("transparency", rpcvalue.Float(0.5), "test"); err != nil {
				t.Fatalf("Set: %v", err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, rec := newStore(t)
			if tt.setup != nil {
				tt.setup(t, store)
			}
			store.HandleChangedNotification([]rpcvalue.Value{rpcvalue.String(tt.name), tt.value})
			if !tt.check(store) {
				t.Fatalf("value %v was not applied", tt.value)
			}
			if warns := rec.AtLevel(slog.LevelWarn); len(warns) != 0 {
				t.Fatalf("unexpected warnings: %+v", warns)
			}
		})
	}
}

func TestHandleChangedNotificationRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []rpcvalue.Value
	}{
		{"no args", nil},
		{"one arg", []rpcvalue.Value{rpcvalue.String("fullscreen")}},
		{"name not string", []rpcvalue.Value{rpcvalue.Int(1), rpcvalue.Bool(true)}},
		{"unknown setting", []rpcvalue.Value{rpcvalue.String("nope"), rpcvalue.Bool(true)}},
		{"wrong type", []rpcvalue.Value{rpcvalue.String("fullscreen"), rpcvalue.String("yes")}},
		{"bool out of range", []rpcvalue.Value{rpcvalue.String("fullscreen"), rpcvalue.Int(2)}},
		{"fractional int", []rpcvalue.Value{rpcvalue.String("refresh_rate"), rpcvalue.Float(59.5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, rec := newStore(t)
			store.HandleChangedNotification(tt.args)
			if store.Bool("fullscreen") || store.Int("refresh_rate") != 60 {
				t.Fatal("bad notification changed state")
			}
			warns := rec.AtLevel(slog.LevelWarn)
			if len(warns) != 1 {
				t.Fatalf("expected one warning, got %d", len(warns))
			}
			if warns[0].Attrs["event_type"] != "setting_invalid" {
				t.Fatalf("unexpected attrs: %v", warns[0].Attrs)
			}
		})
	}
}

func TestObservers(t *testing.T) {
	store, _ := newStore(t)

	var (
		mu     sync.Mutex
		all    []settings.Change
		scoped []settings.Change
	)
	subAll := store.Subscribe(func(c settings.Change) {
		mu.Lock()
		all = append(all, c)
		mu.Unlock()
	})
	subOne := store.SubscribeName("neovide_fullscreen", func(c settings.Change) {
		// Observers may read the store.
		_ = store.Bool("fullscreen")
		mu.Lock()
		scoped = append(scoped, c)
		mu.Unlock()
	})

	store.HandleChangedNotification([]rpcvalue.Value{rpcvalue.String("fullscreen"), rpcvalue.Bool(true)})
	store.HandleChangedNotification([]rpcvalue.Value{rpcvalue.String("no_idle"), rpcvalue.Bool(true)})
	// Unchanged values do not notify.
	store.HandleChangedNotification([]rpcvalue.Value{rpcvalue.String("no_idle"), rpcvalue.Bool(true)})

	mu.Lock()
	if len(all) != 2 || len(scoped) != 1 {
		t.Fatalf("all=%d scoped=%d", len(all), len(scoped))
	}
	if old, _ := scoped[0].Old.AsBool(); old {
		t.Fatalf("old value = %v", scoped[0].Old)
	}
	if scoped[0].Source != "neovim" {
		t.Fatalf("source = %q", scoped[0].Source)
	}
	mu.Unlock()

	subAll.Unsubscribe()
	subOne.Unsubscribe()
	subOne.Unsubscribe()
	store.HandleChangedNotification([]rpcvalue.Value{rpcvalue.String("fullscreen"), rpcvalue.Bool(false)})

	mu.Lock()
	defer mu.Unlock()
	if len(all) != 2 || len(scoped) != 1 {
		t.Fatal("unsubscribed observers were called")
	}
}

type fakeVars map[string]any

func (f fakeVars) Var(name string, result any) error {
	v, ok := f[name]
	if !ok {
		return errors.New("Key not found: " + name)
	}
	*(result.(*any)) = v
	return nil
}

func TestReadInitialValues(t *testing.T) {
	store, rec := newStore(t)
	store.ReadInitialValues(fakeVars{
		"neovide_refresh_rate": int64(120),
		"neovide_fullscreen":   true,
		"neovide_transparency": "opaque",
	})
	if store.Int("refresh_rate") != 120 || !store.Bool("fullscreen") {
		t.Fatal("initial values were not applied")
	}
	if store.Float("transparency") != 1.0 {
		t.Fatal("invalid initial value replaced the default")
	}
	if len(rec.AtLevel(slog.LevelWarn)) != 1 {
		t.Fatalf("expected one warning for the invalid value, got %+v", rec.Records())
	}
}

func TestWatcherScript(t *testing.T) {
	store, _ := newStore(t)
	cmds := store.WatcherScript(7)
	if len(cmds) != len(settings.Defaults()) {
		t.Fatalf("expected one command per setting, got %d", len(cmds))
	}
	found := false
	for _, cmd := range cmds {
		if strings.Contains(cmd, "'neovide_fullscreen'") {
			found = true
			if !strings.Contains(cmd, "rpcnotify(7, 'setting_changed', 'fullscreen'") {
				t.Fatalf("unexpected watcher: %s", cmd)
			}
		}
	}
	if !found {
		t.Fatal("no watcher for fullscreen")
	}
}
