package hotkey

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"snaptile/internal/model"
)

// SuspendHotkeys tears down every live platform registration while
// keeping callbacks and the id↔platformID map, so a later resume can
// rebind everything without new counter allocations.
func (s *Service) SuspendHotkeys(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.suspended {
		return nil
	}

	for platformID := range s.byPlatformID {
		if err := s.api.UnregisterHotkey(platformID); err != nil {
			log.Printf("hotkey: suspend unregister of platform id %d failed: %v", platformID, err)
		}
	}
	s.byPlatformID = make(map[int]string)
	s.suspended = true
	return nil
}

// ResumeHotkeys re-registers every enabled, still-tracked hotkey with its
// persisted modifiers and key under its retained platform-ID slot.
func (s *Service) ResumeHotkeys(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.suspended {
		return nil
	}
	s.suspended = false

	for id, platformID := range s.platformIDs {
		hk, err := s.repo.GetByID(ctx, id)
		if err != nil {
			log.Printf("hotkey: resume lookup for %s failed: %v", id, err)
			continue
		}
		if !hk.IsEnabled {
			continue
		}
		binding, err := ParseKeys(hk.Keys)
		if err != nil {
			log.Printf("hotkey: resume parse of %s failed: %v", hk.Keys, err)
			continue
		}
		if err := s.api.RegisterHotkey(platformID, binding.Modifiers(), binding.KeyCode()); err != nil {
			log.Printf("hotkey: resume registration of %s failed: %v", hk.Keys, err)
			continue
		}
		s.byPlatformID[platformID] = id
	}
	return nil
}

// RefreshHotkeys clears all platform state and the ID counter, then
// re-registers every enabled persisted hotkey whose callback can be
// rebuilt. Callbacks are never persisted, so this is explicitly a partial
// refresh: the returned IDs need external callback re-registration.
func (s *Service) RefreshHotkeys(ctx context.Context) ([]string, error) {
	hotkeys, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, &model.StorageError{Operation: "list", Collection: "hotkeys", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for platformID := range s.byPlatformID {
		if err := s.api.UnregisterHotkey(platformID); err != nil {
			log.Printf("hotkey: refresh unregister of platform id %d failed: %v", platformID, err)
		}
	}
	s.byPlatformID = make(map[int]string)
	s.platformIDs = make(map[string]int)
	s.nextPlatformID = 0

	var needsCallback []string
	for i := range hotkeys {
		hk := &hotkeys[i]
		if !hk.IsEnabled {
			continue
		}
		cb := s.callbackForLocked(hk)
		if cb == nil {
			log.Printf("hotkey: %s (%s) needs external callback re-registration", hk.Keys, hk.ID)
			needsCallback = append(needsCallback, hk.ID)
			continue
		}
		binding, err := ParseKeys(hk.Keys)
		if err != nil {
			log.Printf("hotkey: refresh parse of %s failed: %v", hk.Keys, err)
			continue
		}
		candidate := s.nextPlatformID + 1
		if err := s.api.RegisterHotkey(candidate, binding.Modifiers(), binding.KeyCode()); err != nil {
			log.Printf("hotkey: refresh registration of %s failed: %v", hk.Keys, err)
			continue
		}
		s.nextPlatformID = candidate
		s.platformIDs[hk.ID] = candidate
		s.byPlatformID[candidate] = hk.ID
		s.callbacks[hk.ID] = cb
	}
	sort.Strings(needsCallback)
	return needsCallback, nil
}

// GetHotkeyConflicts groups persisted hotkeys by canonical Keys; any
// group larger than one is a conflict.
func (s *Service) GetHotkeyConflicts(ctx context.Context) ([]model.HotkeyConflict, error) {
	hotkeys, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, &model.StorageError{Operation: "list", Collection: "hotkeys", Err: err}
	}

	groups := make(map[string][]model.HotkeyInfo)
	for _, hk := range hotkeys {
		key := strings.ToLower(hk.Keys)
		groups[key] = append(groups[key], hk)
	}

	now := time.Now().UTC()
	var conflicts []model.HotkeyConflict
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		conflicts = append(conflicts, model.HotkeyConflict{
			Keys:       group[0].Keys,
			Hotkeys:    group,
			DetectedAt: now,
		})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Keys < conflicts[j].Keys })
	return conflicts, nil
}

// ResolveHotkeyConflict keeps the preferred hotkey and unregisters every
// other member of the conflict group. Members that are persisted but not
// tracked in this process are deleted from storage directly.
func (s *Service) ResolveHotkeyConflict(ctx context.Context, conflict model.HotkeyConflict, preferredID string) (bool, error) {
	preferredFound := false
	for _, hk := range conflict.Hotkeys {
		if hk.ID == preferredID {
			preferredFound = true
			break
		}
	}
	if !preferredFound {
		return false, &model.ValidationError{Field: "preferredId", Reason: "not a member of the conflict group"}
	}

	for _, hk := range conflict.Hotkeys {
		if hk.ID == preferredID {
			continue
		}
		s.mu.Lock()
		_, tracked := s.platformIDs[hk.ID]
		s.mu.Unlock()

		if tracked {
			if _, err := s.UnregisterHotkey(ctx, hk.ID); err != nil {
				return false, err
			}
			continue
		}
		if err := s.repo.Delete(ctx, hk.ID); err != nil {
			return false, &model.StorageError{Operation: "delete", Collection: "hotkeys", Err: err}
		}
	}
	return true, nil
}

// IsSuspended reports the service-wide suspended state.
func (s *Service) IsSuspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspended
}

// RegisteredCount returns the number of tracked hotkey registrations.
func (s *Service) RegisteredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.platformIDs)
}
