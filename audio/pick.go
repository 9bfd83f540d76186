package audio

import "math/rand/v2"

// PickNext chooses the next ambient track uniformly at random from tracks,
// never returning current while some other track is available. With a
// single candidate that candidate is returned again. Nil entries are ignored.
func PickNext(rng *rand.Rand, tracks []*Clip, current *Clip) *Clip {
	candidates := make([]*Clip, 0, len(tracks))
	var fallback *Clip
	for _, t := range tracks {
		if t == nil {
			continue
		}
		if fallback == nil {
			fallback = t
		}
		if t == current {
			continue
		}
		candidates = append(candidates, t)
	}

	if len(candidates) == 0 {
		return fallback
	}
	if rng == nil {
		return candidates[rand.IntN(len(candidates))]
	}
	return candidates[rng.IntN(len(candidates))]
}

func compactClips(clips []*Clip) (out []*Clip, dropped int) {
	out = make([]*Clip, 0, len(clips))
	for _, c := range clips {
		if c == nil {
			dropped++
			continue
		}
		out = append(out, c)
	}
	return out, dropped
}
