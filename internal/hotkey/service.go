package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"snaptile/internal/model"
	"snaptile/internal/platform"
	"snaptile/internal/store"
)

// Callback runs when a registered hotkey is pressed.
type Callback func()

// CallbackFactory rebuilds a callback from a hotkey's persisted action.
// Callbacks are closures and cannot be persisted; after a process restart
// or a refresh, dispatch can only be restored through the factory.
type CallbackFactory func(action model.HotkeyAction, layoutID string) Callback

// Service is the hotkey lifecycle and conflict manager. All shared state
// (id to platform-ID slot, callbacks, the platform-ID counter and the
// suspended flag) lives behind one mutex; platform press callbacks and
// CLI-driven registration run on different goroutines.
type Service struct {
	api  platform.HotkeyAPI
	repo *store.HotkeyRepository

	mu             sync.Mutex
	nextPlatformID int
	platformIDs    map[string]int // hotkey ID -> platform ID slot
	byPlatformID   map[int]string // live platform ID -> hotkey ID
	callbacks      map[string]Callback
	suspended      bool
	factory        CallbackFactory
}

func NewService(api platform.HotkeyAPI, repo *store.HotkeyRepository) *Service {
	return &Service{
		api:          api,
		repo:         repo,
		platformIDs:  make(map[string]int),
		byPlatformID: make(map[int]string),
		callbacks:    make(map[string]Callback),
	}
}

// RegisterCallbackFactory installs the factory used to rebuild callbacks
// for persisted hotkeys on resume, refresh and startup re-registration.
func (s *Service) RegisterCallbackFactory(f CallbackFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factory = f
}

// RegisterHotkey validates, checks availability, registers the platform
// binding and persists the hotkey. All-or-nothing: a platform or storage
// failure leaves no local state behind and nothing persisted. Returns
// false without error when the combination is simply unavailable.
func (s *Service) RegisterHotkey(ctx context.Context, hk *model.HotkeyInfo, cb Callback) (bool, error) {
	if hk == nil {
		return false, &model.ValidationError{Field: "hotkey", Reason: "is nil"}
	}
	if cb == nil {
		return false, &model.ValidationError{Field: "callback", Reason: "is nil"}
	}

	binding, err := ParseKeys(hk.Keys)
	if err != nil {
		return false, &model.ValidationError{Field: "keys", Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suspended {
		return false, model.ErrSuspended
	}
	if _, tracked := s.platformIDs[hk.ID]; tracked {
		return false, &model.ValidationError{Field: "id", Reason: fmt.Sprintf("hotkey %s is already registered", hk.ID)}
	}
	if !s.availableLocked(ctx, binding.Canonical()) {
		return false, nil
	}

	// The candidate ID is only committed on success; a failed platform
	// call must not consume a counter value.
	candidate := s.nextPlatformID + 1
	if err := s.api.RegisterHotkey(candidate, binding.Modifiers(), binding.KeyCode()); err != nil {
		return false, &model.OperationError{Operation: fmt.Sprintf("register hotkey %s", binding.Canonical()), Err: err}
	}

	if hk.ID == "" {
		hk.ID = model.NewID()
	}
	now := time.Now().UTC()
	hk.Keys = binding.Canonical()
	hk.Modifiers = binding.ModifierNames()
	hk.Key = binding.KeyName()
	hk.IsEnabled = true
	if hk.CreatedAt.IsZero() {
		hk.CreatedAt = now
	}
	hk.UpdatedAt = now

	if err := s.repo.Insert(ctx, hk); err != nil {
		if unregErr := s.api.UnregisterHotkey(candidate); unregErr != nil {
			log.Printf("hotkey: rollback unregister of platform id %d failed: %v", candidate, unregErr)
		}
		return false, &model.StorageError{Operation: "insert", Collection: "hotkeys", Err: err}
	}

	s.nextPlatformID = candidate
	s.platformIDs[hk.ID] = candidate
	s.byPlatformID[candidate] = hk.ID
	s.callbacks[hk.ID] = cb
	return true, nil
}

// IsHotkeyAvailable reports whether a Keys combination can be registered.
// Storage or parse problems are absorbed: an unusable combination is
// simply unavailable.
func (s *Service) IsHotkeyAvailable(ctx context.Context, keys string) bool {
	canonical, err := Canonicalize(keys)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableLocked(ctx, canonical)
}

func (s *Service) availableLocked(ctx context.Context, canonical string) bool {
	if _, err := s.repo.FindByKeys(ctx, canonical); err == nil {
		return false
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("hotkey: availability lookup for %s failed: %v", canonical, err)
		return false
	}

	info := s.api.SystemInfo()
	if !info.SupportsGlobalHotkeys {
		return false
	}
	if info.MaxHotkeyCount > 0 && len(s.platformIDs) >= info.MaxHotkeyCount {
		return false
	}
	return true
}

// UnregisterHotkey removes a tracked hotkey everywhere: platform
// registration, callback and map entries, and the persisted record.
func (s *Service) UnregisterHotkey(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unregisterLocked(ctx, id)
}

// UnregisterHotkeyByKeys unregisters the tracked hotkey owning a Keys string.
func (s *Service) UnregisterHotkeyByKeys(ctx context.Context, keys string) (bool, error) {
	canonical, err := Canonicalize(keys)
	if err != nil {
		return false, &model.ValidationError{Field: "keys", Reason: err.Error()}
	}
	hk, err := s.repo.FindByKeys(ctx, canonical)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, &model.NotFoundError{Kind: "hotkey", ID: canonical}
		}
		return false, &model.StorageError{Operation: "find", Collection: "hotkeys", Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unregisterLocked(ctx, hk.ID)
}

func (s *Service) unregisterLocked(ctx context.Context, id string) (bool, error) {
	platformID, tracked := s.platformIDs[id]
	if !tracked {
		return false, &model.NotFoundError{Kind: "hotkey", ID: id}
	}

	if _, live := s.byPlatformID[platformID]; live {
		if err := s.api.UnregisterHotkey(platformID); err != nil {
			log.Printf("hotkey: platform unregister of id %d failed: %v", platformID, err)
		}
	}
	delete(s.byPlatformID, platformID)
	delete(s.platformIDs, id)
	delete(s.callbacks, id)

	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, &model.StorageError{Operation: "delete", Collection: "hotkeys", Err: err}
	}
	return true, nil
}

// EnableHotkey re-enables a persisted hotkey. When the platform-ID slot
// and a callback are still known, the platform binding is re-established
// under the retained slot; otherwise only the flag is persisted and the
// hotkey needs external callback re-registration.
func (s *Service) EnableHotkey(ctx context.Context, id string) (bool, error) {
	hk, err := s.getPersisted(ctx, id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if platformID, tracked := s.platformIDs[id]; tracked && !s.suspended {
		if _, live := s.byPlatformID[platformID]; !live {
			cb := s.callbackForLocked(hk)
			if cb != nil {
				binding, err := ParseKeys(hk.Keys)
				if err == nil {
					if err := s.api.RegisterHotkey(platformID, binding.Modifiers(), binding.KeyCode()); err != nil {
						return false, &model.OperationError{Operation: fmt.Sprintf("re-register hotkey %s", hk.Keys), Err: err}
					}
					s.byPlatformID[platformID] = id
					s.callbacks[id] = cb
				}
			} else {
				log.Printf("hotkey: %s enabled but has no callback; external re-registration required", hk.Keys)
			}
		}
	}

	hk.IsEnabled = true
	hk.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, hk); err != nil {
		return false, &model.StorageError{Operation: "update", Collection: "hotkeys", Err: err}
	}
	return true, nil
}

// DisableHotkey persists IsEnabled=false AND tears down the platform
// binding. The platform-ID slot and callback are retained so a later
// enable can rebind without allocating a new counter value.
func (s *Service) DisableHotkey(ctx context.Context, id string) (bool, error) {
	hk, err := s.getPersisted(ctx, id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if platformID, tracked := s.platformIDs[id]; tracked {
		if _, live := s.byPlatformID[platformID]; live {
			if err := s.api.UnregisterHotkey(platformID); err != nil {
				log.Printf("hotkey: platform unregister of id %d failed: %v", platformID, err)
			}
			delete(s.byPlatformID, platformID)
		}
	}

	hk.IsEnabled = false
	hk.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, hk); err != nil {
		return false, &model.StorageError{Operation: "update", Collection: "hotkeys", Err: err}
	}
	return true, nil
}

// ChangeHotkeyKeys rebinds a tracked hotkey to a new combination under
// its existing platform-ID slot: the old binding is unregistered, the new
// one registered with the same platform ID, then the record is persisted.
func (s *Service) ChangeHotkeyKeys(ctx context.Context, id, newKeys string) (bool, error) {
	binding, err := ParseKeys(newKeys)
	if err != nil {
		return false, &model.ValidationError{Field: "keys", Reason: err.Error()}
	}

	hk, err := s.getPersisted(ctx, id)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if hk.Keys != binding.Canonical() && !s.availableLocked(ctx, binding.Canonical()) {
		return false, nil
	}

	// Only a live binding is rebound on the platform. A disabled hotkey
	// keeps its slot but must stay unbound until enabled; only the
	// persisted keys change.
	platformID, tracked := s.platformIDs[id]
	if tracked {
		if _, live := s.byPlatformID[platformID]; live {
			if err := s.api.UnregisterHotkey(platformID); err != nil {
				log.Printf("hotkey: unregister before rebind of id %d failed: %v", platformID, err)
			}
			delete(s.byPlatformID, platformID)

			if err := s.api.RegisterHotkey(platformID, binding.Modifiers(), binding.KeyCode()); err != nil {
				// Restore the old grab; a failed rebind must not leave
				// the hotkey unbound.
				if old, parseErr := ParseKeys(hk.Keys); parseErr == nil {
					if regErr := s.api.RegisterHotkey(platformID, old.Modifiers(), old.KeyCode()); regErr != nil {
						log.Printf("hotkey: restore of binding %s after failed rebind: %v", hk.Keys, regErr)
					} else {
						s.byPlatformID[platformID] = id
					}
				}
				return false, &model.OperationError{Operation: fmt.Sprintf("rebind hotkey to %s", binding.Canonical()), Err: err}
			}
			s.byPlatformID[platformID] = id
		}
	}

	hk.Keys = binding.Canonical()
	hk.Modifiers = binding.ModifierNames()
	hk.Key = binding.KeyName()
	hk.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, hk); err != nil {
		return false, &model.StorageError{Operation: "update", Collection: "hotkeys", Err: err}
	}
	return true, nil
}

// UpdateHotkey persists changed hotkey metadata. A Keys change goes
// through the full rebind path.
func (s *Service) UpdateHotkey(ctx context.Context, hk *model.HotkeyInfo) (bool, error) {
	if hk == nil {
		return false, &model.ValidationError{Field: "hotkey", Reason: "is nil"}
	}
	existing, err := s.getPersisted(ctx, hk.ID)
	if err != nil {
		return false, err
	}

	canonical, err := Canonicalize(hk.Keys)
	if err != nil {
		return false, &model.ValidationError{Field: "keys", Reason: err.Error()}
	}
	if canonical != existing.Keys {
		if ok, err := s.ChangeHotkeyKeys(ctx, hk.ID, canonical); !ok {
			return false, err
		}
		existing, err = s.getPersisted(ctx, hk.ID)
		if err != nil {
			return false, err
		}
	}

	existing.Action = hk.Action
	existing.LayoutID = hk.LayoutID
	existing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, existing); err != nil {
		return false, &model.StorageError{Operation: "update", Collection: "hotkeys", Err: err}
	}
	return true, nil
}

// HandleHotkeyPress dispatches a platform hotkey press to its callback.
// Presses are ignored while suspended; an orphaned platform ID is a
// logged no-op, not an error.
func (s *Service) HandleHotkeyPress(ctx context.Context, platformID int) {
	s.mu.Lock()
	if s.suspended {
		s.mu.Unlock()
		return
	}
	id, ok := s.byPlatformID[platformID]
	if !ok {
		s.mu.Unlock()
		log.Printf("hotkey: press for unknown platform id %d ignored", platformID)
		return
	}
	cb := s.callbacks[id]
	s.mu.Unlock()

	s.recordUsage(ctx, id)

	if cb == nil {
		log.Printf("hotkey: %s has no callback; press dropped", id)
		return
	}
	cb()
}

func (s *Service) recordUsage(ctx context.Context, id string) {
	hk, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return
	}
	hk.LastUsedAt = time.Now().UTC()
	hk.UseCount++
	if err := s.repo.Update(ctx, hk); err != nil {
		log.Printf("hotkey: usage update for %s failed: %v", id, err)
	}
}

func (s *Service) getPersisted(ctx context.Context, id string) (*model.HotkeyInfo, error) {
	hk, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &model.NotFoundError{Kind: "hotkey", ID: id}
		}
		return nil, &model.StorageError{Operation: "get", Collection: "hotkeys", Err: err}
	}
	return hk, nil
}

// callbackForLocked returns the in-memory callback for a hotkey, building
// one through the factory when possible.
func (s *Service) callbackForLocked(hk *model.HotkeyInfo) Callback {
	if cb, ok := s.callbacks[hk.ID]; ok && cb != nil {
		return cb
	}
	if s.factory != nil {
		return s.factory(hk.Action, hk.LayoutID)
	}
	return nil
}

// resetPlatformIDCounterForTest rewinds the monotonic counter. The
// counter is otherwise never reused while the process lives: a stale OS
// callback referencing an old ID must never collide with a fresh one.
func (s *Service) resetPlatformIDCounterForTest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPlatformID = 0
}
