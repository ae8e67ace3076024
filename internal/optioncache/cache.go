package optioncache

import (
	"sync"
	"time"
)

// Slot identifies one kind of per-user wizard value.
type Slot uint8

const (
	SlotState Slot = iota + 1
	SlotSeriesList
	SlotSeriesID
	SlotProfileList
	SlotProfileID
	SlotFolderList
	SlotFolderID
	SlotMonitorList
	SlotRevokeList
	SlotUnrevokeList
	SlotRevokeTarget
)

var slotNames = map[Slot]string{
	SlotState:        "state",
	SlotSeriesList:   "seriesList",
	SlotSeriesID:     "seriesId",
	SlotProfileList:  "profileList",
	SlotProfileID:    "profileId",
	SlotFolderList:   "folderList",
	SlotFolderID:     "folderId",
	SlotMonitorList:  "monitorList",
	SlotRevokeList:   "revokeList",
	SlotUnrevokeList: "unrevokeList",
	SlotRevokeTarget: "revokeTarget",
}

func (s Slot) String() string {
	if name, ok := slotNames[s]; ok {
		return name
	}
	return "unknown"
}

// WizardSlots lists every slot cleared when a user's flow ends.
var WizardSlots = []Slot{
	SlotState,
	SlotSeriesList,
	SlotSeriesID,
	SlotProfileList,
	SlotProfileID,
	SlotFolderList,
	SlotFolderID,
	SlotMonitorList,
	SlotRevokeList,
	SlotUnrevokeList,
	SlotRevokeTarget,
}

type key struct {
	userID int64
	slot   Slot
}

type entry struct {
	value   any
	expires time.Time
}

// Cache is a per-user, per-slot expiring store.
type Cache struct {
	mu      sync.Mutex
	entries map[key]entry
	ttl     time.Duration
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// Option customizes cache construction.
type Option func(*Cache)

// WithClock overrides the time source. Tests use this to force expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New builds a cache whose entries live for ttl after each Set.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[key]entry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set stores value under (userID, slot), replacing any previous value and
// stamping a fresh expiry.
func (c *Cache) Set(userID int64, slot Slot, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key{userID, slot}] = entry{value: value, expires: c.now().Add(c.ttl)}
}

// Get returns the live value for (userID, slot). Expired entries are
// removed and reported absent; reads never extend an entry's life.
func (c *Cache) Get(userID int64, slot Slot) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key{userID, slot}
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, k)
		return nil, false
	}
	return e.value, true
}

// Delete removes the entry for (userID, slot) if present.
func (c *Cache) Delete(userID int64, slot Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key{userID, slot})
}

// ClearUser removes every slot held for userID.
func (c *Cache) ClearUser(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.userID == userID {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep drops every expired entry and reports how many were removed.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// StartSweep launches a background goroutine that calls Sweep every
// interval until Close is called.
func (c *Cache) StartSweep(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Close stops the background sweeper. Safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}
