package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/keel/internal/plugin/api"
	glua "github.com/dshills/keel/internal/plugin/lua"
	"github.com/dshills/keel/internal/plugin/settings"
)

// record is the manager's view of one plugin.
type record struct {
	desc       Descriptor
	state      State
	instance   Instance
	lastError  error
	loadFailed bool
}

// Info is one row of the plugin listing, in a form the UI and the CLI can
// render without reaching into manager internals.
type Info struct {
	Identifier  string
	DisplayName string
	Description string
	Version     string
	Author      string
	Path        string
	Hooks       []string
	Builtin     bool
	State       State
	Enabled     bool
	LastError   error
}

// SettingsSurface is the opaque settings view a plugin hands to the UI.
// Token identifies this particular opening; Content is whatever the plugin
// returned and is rendered without interpretation.
type SettingsSurface struct {
	Token      string
	Identifier string
	Content    any
}

// Manager owns every plugin record: discovery, loading, the
// enabled/disabled lifecycle, persisted state, and removal. One failing
// plugin never takes down the manager or its neighbors.
//
// Lifecycle operations on the same identifier are serialized; operations on
// different identifiers run concurrently. Hooks execute outside the
// manager's record lock, so a slow plugin cannot stall listings.
type Manager struct {
	pluginDir string
	scanner   *Scanner
	store     *settings.Store
	surface   api.Surface
	log       zerolog.Logger
	handlers  handlerSet

	natives    map[string]Registration
	onOpenList func()

	mu       sync.RWMutex
	records  map[string]*record
	order    []string
	scanErrs []*DiscoveryError
	closed   bool

	opMu sync.Mutex
	ops  map[string]*sync.Mutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithSurface supplies the host capability surface handed to plugins. The
// Plugins field is ignored; the manager installs its own back-reference per
// plugin.
func WithSurface(surface api.Surface) Option {
	return func(m *Manager) {
		m.surface = surface
	}
}

// WithNatives replaces the process-wide registry for this manager.
func WithNatives(regs ...Registration) Option {
	return func(m *Manager) {
		m.natives = make(map[string]Registration, len(regs))
		for _, r := range regs {
			m.natives[r.Identifier] = r
		}
	}
}

// WithOpenList registers the host callback behind keel.plugins.open_list.
func WithOpenList(fn func()) Option {
	return func(m *Manager) {
		m.onOpenList = fn
	}
}

// NewManager creates a manager over a plugin directory and a settings
// directory. Nothing is scanned or loaded yet; call Rescan, then
// EnablePersisted to bring up the previously enabled plugins.
func NewManager(pluginDir, settingsDir string, opts ...Option) *Manager {
	m := &Manager{
		pluginDir: pluginDir,
		log:       zerolog.Nop(),
		records:   make(map[string]*record),
		ops:       make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.natives == nil {
		m.natives = make(map[string]Registration)
		for _, r := range Registered() {
			m.natives[r.Identifier] = r
		}
	}

	m.scanner = NewScanner(pluginDir, m.log)
	m.store = settings.NewStore(settingsDir,
		settings.WithLogger(m.log),
		settings.WithCorruptHandler(func(ce *settings.CorruptError) {
			m.log.Warn().Str("plugin", ce.Identifier).Msg("settings record reset to empty")
			m.emit(Event{Kind: EventFailed, Identifier: ce.Identifier, Err: ce})
		}),
	)

	for id, reg := range m.natives {
		m.records[id] = &record{desc: reg.descriptor()}
		m.order = append(m.order, id)
	}
	sort.Strings(m.order)

	return m
}

// Dir returns the scanned plugin directory.
func (m *Manager) Dir() string { return m.pluginDir }

// Settings returns the backing settings store.
func (m *Manager) Settings() *settings.Store { return m.store }

// Subscribe registers a handler for lifecycle events and returns a
// function that removes it.
func (m *Manager) Subscribe(fn Handler) func() {
	return m.handlers.add(fn)
}

// Rescan reads the plugin directory and reconciles the record table: new
// files become Discovered records, known files refresh their metadata, and
// records whose file vanished are disabled, dropped, and have their
// persisted enabled flag cleared. Running instances of surviving plugins
// are left alone.
func (m *Manager) Rescan() error {
	if m.isClosed() {
		return ErrManagerClosed
	}

	claimed := make(map[string]bool, len(m.natives))
	for id := range m.natives {
		claimed[id] = true
	}
	cands := m.scanner.Scan(claimed)

	var pending []Event
	var removed []string
	var collisions []*DiscoveryError

	m.mu.Lock()
	seen := make(map[string]bool, len(cands))
	for _, cand := range cands {
		if cand.Err != nil && errors.Is(cand.Err, ErrIdentifierTaken) {
			collisions = append(collisions, cand.Err)
			continue
		}
		seen[cand.Identifier] = true

		rec, known := m.records[cand.Identifier]
		if !known {
			rec = &record{state: StateDiscovered}
			if cand.Err == nil {
				rec.desc = cand.Descriptor
			} else {
				rec.desc = Descriptor{
					Identifier: cand.Identifier,
					ClassName:  DeriveClassName(cand.Identifier),
					Path:       cand.Path,
				}
				rec.lastError = cand.Err
			}
			m.records[cand.Identifier] = rec
			m.insertOrdered(cand.Identifier)
			pending = append(pending, Event{Kind: EventDiscovered, Identifier: cand.Identifier})
			if cand.Err != nil {
				pending = append(pending, Event{Kind: EventFailed, Identifier: cand.Identifier, Err: cand.Err})
			}
			continue
		}

		if cand.Err != nil {
			rec.lastError = cand.Err
			pending = append(pending, Event{Kind: EventFailed, Identifier: cand.Identifier, Err: cand.Err})
			continue
		}
		rec.desc = cand.Descriptor
		if _, bad := rec.lastError.(*DiscoveryError); bad {
			// The file satisfies the convention again.
			rec.lastError = nil
		}
	}

	for _, id := range m.order {
		rec := m.records[id]
		if rec.desc.Builtin || seen[id] {
			continue
		}
		removed = append(removed, id)
	}
	m.scanErrs = collisions
	m.mu.Unlock()

	for _, ev := range pending {
		m.emit(ev)
	}
	for _, de := range collisions {
		m.emit(Event{Kind: EventFailed, Identifier: de.Identifier, Err: de})
	}
	for _, id := range removed {
		m.remove(id)
	}
	return nil
}

// ScanErrors returns the collisions recorded by the last scan: files whose
// identifier already belongs to another source. They have no record of
// their own, so they are reported here instead of in the listing.
func (m *Manager) ScanErrors() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]error, 0, len(m.scanErrs))
	for _, de := range m.scanErrs {
		out = append(out, de)
	}
	return out
}

// List returns a snapshot of every record in identifier order.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Info, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, infoOf(m.records[id]))
	}
	return out
}

// Get returns the record snapshot for one identifier.
func (m *Manager) Get(id string) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return infoOf(rec), nil
}

// IsEnabled reports whether the plugin is currently enabled.
func (m *Manager) IsEnabled(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	return ok && rec.state == StateEnabled
}

// Load constructs the plugin instance without enabling it. Loading an
// already loaded plugin is a no-op.
func (m *Manager) Load(id string) error {
	if m.isClosed() {
		return ErrManagerClosed
	}
	lk := m.idLock(id)
	lk.Lock()
	defer lk.Unlock()
	return m.loadLocked(id)
}

// Enable activates the plugin, loading it first when needed. The enable
// hook runs before the transition is committed: a hook failure leaves the
// plugin inactive, records the error, and does not mark the persisted flag
// true. Enabling an enabled plugin is a no-op; the hook does not run again.
func (m *Manager) Enable(id string) error {
	if m.isClosed() {
		return ErrManagerClosed
	}
	lk := m.idLock(id)
	lk.Lock()
	defer lk.Unlock()

	if err := m.loadLocked(id); err != nil {
		return err
	}

	m.mu.Lock()
	rec := m.records[id]
	if rec.state == StateEnabled {
		m.mu.Unlock()
		return nil
	}
	inst := rec.instance
	m.mu.Unlock()

	if err := inst.Enable(); err != nil {
		herr := &HookError{Identifier: id, Hook: glua.HookEnable, Err: err}
		m.mu.Lock()
		rec.lastError = herr
		m.mu.Unlock()
		m.log.Warn().Err(herr).Str("plugin", id).Msg("enable hook failed")
		m.emit(Event{Kind: EventFailed, Identifier: id, Err: herr})
		return herr
	}

	m.mu.Lock()
	rec.state = StateEnabled
	rec.lastError = nil
	m.mu.Unlock()

	if err := m.store.SetEnabled(id, true); err != nil {
		m.log.Warn().Err(err).Str("plugin", id).Msg("could not persist enabled flag")
	}
	m.emit(Event{Kind: EventEnabled, Identifier: id})
	return nil
}

// Disable deactivates the plugin. The transition always completes and the
// persisted flag is always set false, even when the disable hook fails; in
// that case the hook error is recorded and returned. Disabling a plugin
// that is not enabled is a no-op.
func (m *Manager) Disable(id string) error {
	if m.isClosed() {
		return ErrManagerClosed
	}
	lk := m.idLock(id)
	lk.Lock()
	defer lk.Unlock()
	return m.disableLocked(id, true)
}

// Toggle flips the plugin between enabled and disabled and reports the
// resulting enabled state.
func (m *Manager) Toggle(id string) (bool, error) {
	if m.IsEnabled(id) {
		return false, m.Disable(id)
	}
	return true, m.Enable(id)
}

// EnablePersisted enables, in listing order, every plugin whose stored
// enabled flag is true. One failure never stops the rest; the returned
// error joins everything that went wrong. Plugins whose load already
// failed this session are skipped.
func (m *Manager) EnablePersisted() error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.order))
	for _, id := range m.order {
		if !m.records[id].loadFailed {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if !m.store.Enabled(id) {
			continue
		}
		if err := m.Enable(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EditSurface asks the plugin for its settings surface, loading the plugin
// first when needed. A plugin without an edit hook, or one whose hook
// returns nothing, yields (nil, nil): it has no settings to show. A failing
// hook records the error and returns it; the caller renders that as "no
// settings available".
func (m *Manager) EditSurface(id string) (*SettingsSurface, error) {
	if m.isClosed() {
		return nil, ErrManagerClosed
	}
	lk := m.idLock(id)
	lk.Lock()
	defer lk.Unlock()

	if err := m.loadLocked(id); err != nil {
		return nil, err
	}

	m.mu.RLock()
	rec := m.records[id]
	inst := rec.instance
	m.mu.RUnlock()

	content, err := inst.Edit()
	if err != nil {
		herr := &HookError{Identifier: id, Hook: glua.HookEdit, Err: err}
		m.mu.Lock()
		rec.lastError = herr
		m.mu.Unlock()
		m.log.Warn().Err(herr).Str("plugin", id).Msg("edit hook failed")
		m.emit(Event{Kind: EventFailed, Identifier: id, Err: herr})
		return nil, herr
	}
	if content == nil {
		return nil, nil
	}
	return &SettingsSurface{
		Token:      uuid.New().String(),
		Identifier: id,
		Content:    content,
	}, nil
}

// Access returns the manager back-reference granted to the plugin with the
// given identifier. Lifecycle calls naming the owner itself are rejected so
// a hook cannot deadlock against its own transition.
func (m *Manager) Access(owner string) api.ManagerAccess {
	return &managerAccess{owner: owner, m: m}
}

// Close disables every enabled plugin in reverse listing order and
// releases all instances. The persisted enabled flags are left untouched
// so the next session restores the same set.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	m.mu.Unlock()

	var errs []error
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		lk := m.idLock(id)
		lk.Lock()
		if err := m.disableLocked(id, false); err != nil {
			errs = append(errs, err)
		}
		m.mu.Lock()
		rec := m.records[id]
		inst := rec.instance
		rec.instance = nil
		m.mu.Unlock()
		if inst != nil {
			if err := inst.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close plugin %q: %w", id, err))
			}
		}
		lk.Unlock()
	}
	return errors.Join(errs...)
}

// loadLocked constructs the instance when none exists. The caller holds
// the identifier's lifecycle lock.
func (m *Manager) loadLocked(id string) error {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if rec.state.Loaded() {
		m.mu.Unlock()
		return nil
	}
	if de, bad := rec.lastError.(*DiscoveryError); bad {
		m.mu.Unlock()
		return de
	}
	desc := rec.desc.Clone()
	m.mu.Unlock()

	inst, err := m.construct(desc)
	if err != nil {
		lerr := &LoadError{Identifier: id, Err: err}
		m.mu.Lock()
		rec.lastError = lerr
		rec.loadFailed = true
		m.mu.Unlock()
		m.log.Warn().Err(lerr).Str("plugin", id).Msg("plugin failed to load")
		m.emit(Event{Kind: EventFailed, Identifier: id, Err: lerr})
		return lerr
	}

	m.mu.Lock()
	rec.instance = inst
	rec.state = StateLoaded
	rec.lastError = nil
	rec.loadFailed = false
	m.mu.Unlock()
	m.emit(Event{Kind: EventLoaded, Identifier: id})
	return nil
}

// disableLocked performs the disable transition. The caller holds the
// identifier's lifecycle lock. persist controls whether the stored enabled
// flag is written; session shutdown disables without persisting so the
// next session restores the set.
func (m *Manager) disableLocked(id string, persist bool) error {
	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if rec.state != StateEnabled {
		m.mu.Unlock()
		return nil
	}
	inst := rec.instance
	m.mu.Unlock()

	hookErr := inst.Disable()

	m.mu.Lock()
	rec.state = StateDisabled
	if hookErr != nil {
		rec.lastError = &HookError{Identifier: id, Hook: glua.HookDisable, Err: hookErr}
	} else {
		rec.lastError = nil
	}
	herr := rec.lastError
	m.mu.Unlock()

	if persist {
		if err := m.store.SetEnabled(id, false); err != nil {
			m.log.Warn().Err(err).Str("plugin", id).Msg("could not persist disabled flag")
		}
	}
	if herr != nil {
		m.log.Warn().Err(herr).Str("plugin", id).Msg("disable hook failed, plugin disabled anyway")
		m.emit(Event{Kind: EventFailed, Identifier: id, Err: herr})
	}
	m.emit(Event{Kind: EventDisabled, Identifier: id})
	if herr != nil {
		return herr
	}
	return nil
}

// remove runs the vanished-file flow for one identifier: disable without
// persisting, drop the instance and record, and clear the stored enabled
// flag so it cannot resurrect the plugin next session.
func (m *Manager) remove(id string) {
	lk := m.idLock(id)
	lk.Lock()
	defer lk.Unlock()

	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	enabled := rec.state == StateEnabled
	inst := rec.instance
	rec.state = StateUnloaded
	m.mu.Unlock()

	if enabled && inst != nil {
		if err := inst.Disable(); err != nil {
			m.log.Warn().Err(err).Str("plugin", id).Msg("disable hook failed during removal")
		}
	}
	if inst != nil {
		if err := inst.Close(); err != nil {
			m.log.Warn().Err(err).Str("plugin", id).Msg("instance close failed during removal")
		}
	}
	if err := m.store.ClearEnabled(id); err != nil {
		m.log.Warn().Err(err).Str("plugin", id).Msg("could not clear persisted enabled flag")
	}

	m.mu.Lock()
	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.mu.Unlock()

	m.opMu.Lock()
	delete(m.ops, id)
	m.opMu.Unlock()

	m.log.Info().Str("plugin", id).Msg("plugin file vanished, record removed")
	m.emit(Event{Kind: EventRemoved, Identifier: id})
}

// construct builds the instance for a descriptor: natives through their
// registered constructor, scripts through a fresh interpreter.
func (m *Manager) construct(desc Descriptor) (Instance, error) {
	env := Env{
		Surface:  m.surfaceFor(desc.Identifier),
		Settings: &storeView{id: desc.Identifier, store: m.store},
		Log:      m.log.With().Str("plugin", desc.Identifier).Logger(),
	}
	if desc.Builtin {
		reg, ok := m.natives[desc.Identifier]
		if !ok {
			return nil, fmt.Errorf("%w: no constructor for built-in %q", ErrNotFound, desc.Identifier)
		}
		return reg.Construct(env)
	}
	return newLuaInstance(desc, env)
}

// surfaceFor returns the host surface with the manager back-reference
// bound to the given owner.
func (m *Manager) surfaceFor(owner string) api.Surface {
	s := m.surface
	s.Plugins = m.Access(owner)
	return s
}

// idLock returns the lifecycle mutex for one identifier.
func (m *Manager) idLock(id string) *sync.Mutex {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	lk, ok := m.ops[id]
	if !ok {
		lk = &sync.Mutex{}
		m.ops[id] = lk
	}
	return lk
}

// insertOrdered inserts id into the sorted order slice. The caller holds
// the record lock.
func (m *Manager) insertOrdered(id string) {
	i := sort.SearchStrings(m.order, id)
	m.order = append(m.order, "")
	copy(m.order[i+1:], m.order[i:])
	m.order[i] = id
}

func (m *Manager) isClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

func (m *Manager) emit(ev Event) {
	m.handlers.emit(m.log, ev)
}

// infoOf snapshots a record. The caller holds the record lock.
func infoOf(rec *record) Info {
	return Info{
		Identifier:  rec.desc.Identifier,
		DisplayName: rec.desc.Title(),
		Description: rec.desc.Description,
		Version:     rec.desc.Version,
		Author:      rec.desc.Author,
		Path:        rec.desc.Path,
		Hooks:       append([]string(nil), rec.desc.Hooks...),
		Builtin:     rec.desc.Builtin,
		State:       rec.state,
		Enabled:     rec.state == StateEnabled,
		LastError:   rec.lastError,
	}
}

// storeView scopes the settings store to one identifier.
type storeView struct {
	id    string
	store *settings.Store
}

func (v *storeView) Get(key string, def any) any     { return v.store.Get(v.id, key, def) }
func (v *storeView) Set(key string, value any) error { return v.store.Set(v.id, key, value) }
func (v *storeView) All() map[string]any             { return v.store.Settings(v.id) }

// managerAccess is the back-reference handed to one plugin.
type managerAccess struct {
	owner string
	m     *Manager
}

func (a *managerAccess) List() []api.PluginSummary {
	infos := a.m.List()
	out := make([]api.PluginSummary, 0, len(infos))
	for _, info := range infos {
		out = append(out, api.PluginSummary{
			Identifier:  info.Identifier,
			DisplayName: info.DisplayName,
			Enabled:     info.Enabled,
			Failed:      info.LastError != nil,
		})
	}
	return out
}

func (a *managerAccess) Enable(id string) error {
	if id == a.owner {
		return fmt.Errorf("%w: %q", ErrSelfLifecycle, id)
	}
	return a.m.Enable(id)
}

func (a *managerAccess) Disable(id string) error {
	if id == a.owner {
		return fmt.Errorf("%w: %q", ErrSelfLifecycle, id)
	}
	return a.m.Disable(id)
}

func (a *managerAccess) OpenList() {
	if a.m.onOpenList != nil {
		a.m.onOpenList()
	}
}
