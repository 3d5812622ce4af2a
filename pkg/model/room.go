package model

import (
	"fmt"
	"strings"
)

type Room struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// RoomCatalog is the closed, ordered set of bookable rooms.
type RoomCatalog []Room

// Decode parses "key=name;key=name". It lets the catalog be read straight
// from an environment variable.
func (c *RoomCatalog) Decode(value string) error {
	var rooms RoomCatalog
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, name, ok := strings.Cut(part, "=")
		key, name = strings.TrimSpace(key), strings.TrimSpace(name)
		if !ok || key == "" || name == "" {
			return fmt.Errorf("invalid room entry %q, want key=name", part)
		}
		if rooms.Has(key) {
			return fmt.Errorf("duplicate room key %q", key)
		}
		rooms = append(rooms, Room{Key: key, Name: name})
	}
	*c = rooms
	return nil
}

func (c RoomCatalog) String() string {
	parts := make([]string, len(c))
	for i, r := range c {
		parts[i] = r.Key + "=" + r.Name
	}
	return strings.Join(parts, ";")
}

func (c RoomCatalog) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c RoomCatalog) Get(key string) (Room, bool) {
	for _, r := range c {
		if r.Key == key {
			return r, true
		}
	}
	return Room{}, false
}

// Resolve matches a room by key or, failing that, by its display name.
func (c RoomCatalog) Resolve(keyOrName string) (Room, bool) {
	keyOrName = strings.TrimSpace(keyOrName)
	if r, ok := c.Get(keyOrName); ok {
		return r, true
	}
	for _, r := range c {
		if strings.EqualFold(r.Name, keyOrName) {
			return r, true
		}
	}
	return Room{}, false
}

// DisplayName returns the room's name, or the key itself for unknown rooms.
func (c RoomCatalog) DisplayName(key string) string {
	if r, ok := c.Get(key); ok {
		return r.Name
	}
	return key
}

func (c RoomCatalog) Keys() []string {
	keys := make([]string, len(c))
	for i, r := range c {
		keys[i] = r.Key
	}
	return keys
}
