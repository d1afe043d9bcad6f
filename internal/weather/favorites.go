package weather

// MaxFavorites caps the favorites list.
const MaxFavorites = 24

// IsFavorite reports whether p is in list.
func IsFavorite(list []Place, p Place) bool {
	return indexOf(list, p) >= 0
}

// ToggleFavorite removes p if present, otherwise inserts it at the front.
// The returned list is a new slice, deduplicated and capped at MaxFavorites.
func ToggleFavorite(list []Place, p Place) (out []Place, added bool) {
	if i := indexOf(list, p); i >= 0 {
		out = make([]Place, 0, len(list)-1)
		out = append(out, list[:i]...)
		out = append(out, list[i+1:]...)
		return out, false
	}
	out = make([]Place, 0, len(list)+1)
	out = append(out, p)
	out = append(out, list...)
	return NormalizeFavorites(out), true
}

// NormalizeFavorites drops duplicate coordinates (first occurrence wins) and
// applies the cap.
func NormalizeFavorites(list []Place) []Place {
	out := make([]Place, 0, len(list))
	for _, p := range list {
		if indexOf(out, p) >= 0 {
			continue
		}
		out = append(out, p)
		if len(out) == MaxFavorites {
			break
		}
	}
	return out
}

func indexOf(list []Place, p Place) int {
	for i, f := range list {
		if SamePlace(f, p) {
			return i
		}
	}
	return -1
}
