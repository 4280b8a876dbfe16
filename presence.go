package qskema

import "strings"

// Presence is the bit flag collected by WithMeta APIs.
type Presence uint8

const (
	PresenceSeen           Presence = 1 << iota // Key appeared in the input.
	PresenceWasEmpty                            // Raw value was the empty string.
	PresenceDefaultApplied                      // Default value was applied.
)

// PresenceMap maps field pointers ("/name") to Presence flags.
type PresenceMap map[string]Presence

// Decoded carries the decoded value along with presence metadata.
type Decoded[T any] struct {
	Value    T
	Presence PresenceMap
}

// PresenceOpt configures presence collection for WithMeta-style decoding.
type PresenceOpt struct {
	Collect bool
	Include []string
	Exclude []string
}

func applyPresenceOptions(pm PresenceMap, popt PresenceOpt) PresenceMap {
	if pm == nil {
		return nil
	}
	if !popt.Collect {
		return nil
	}
	if len(popt.Include) == 0 && len(popt.Exclude) == 0 {
		return pm
	}

	filtered := make(PresenceMap, len(pm))
	shouldInclude := func(path string) bool {
		if len(popt.Include) > 0 {
			ok := false
			for _, p := range popt.Include {
				if strings.HasPrefix(path, p) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
		for _, p := range popt.Exclude {
			if strings.HasPrefix(path, p) {
				return false
			}
		}
		return true
	}
	for k, v := range pm {
		if shouldInclude(k) {
			filtered[k] = v
		}
	}
	return filtered
}
