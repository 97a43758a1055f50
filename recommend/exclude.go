package recommend

import "groovr/models"

// Exclude filters out candidates whose id is in the exclusion set,
// preserving the relative order of what remains. Duplicates within the
// candidate list itself are left alone; only seed collisions are removed.
func Exclude(candidates []models.Track, excludedIDs map[string]struct{}) []models.Track {
	if len(excludedIDs) == 0 {
		return candidates
	}
	filtered := make([]models.Track, 0, len(candidates))
	for _, track := range candidates {
		if _, excluded := excludedIDs[track.ID]; excluded {
			continue
		}
		filtered = append(filtered, track)
	}
	return filtered
}

// ExclusionSet builds the id set for a recommendation call: the current
// seed plus every track already in the session's seed list.
func ExclusionSet(seedID string, seeds []models.SeedSong) map[string]struct{} {
	set := make(map[string]struct{}, len(seeds)+1)
	if seedID != "" {
		set[seedID] = struct{}{}
	}
	for _, seed := range seeds {
		if seed.ID != "" {
			set[seed.ID] = struct{}{}
		}
	}
	return set
}
