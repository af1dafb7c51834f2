package identity

import "slices"

// Index returns the position of username in list, or -1.
func Index(username string, list []Identity) int {
	return slices.IndexFunc(list, func(e Identity) bool { return e.Username == username })
}

// Upsert replaces the element with id's username in place, or appends id.
// The input list is not modified.
func Upsert(id Identity, list []Identity) []Identity {
	out := make([]Identity, len(list), len(list)+1)
	copy(out, list)

	if i := Index(id.Username, out); i >= 0 {
		out[i] = id.Clone()
		return out
	}
	return append(out, id.Clone())
}

// Remove drops the element with id's username. When the username is absent
// the list is returned unchanged together with a NotFound warning; a prior
// reconcile may already have removed it.
func Remove(id Identity, list []Identity) ([]Identity, *Warning) {
	i := Index(id.Username, list)
	if i < 0 {
		return slices.Clone(list), &Warning{
			Reason:   ReasonNotFound,
			Kind:     id.Kind,
			Username: id.Username,
			Message:  "want to delete mapping, but it is not present",
		}
	}

	out := make([]Identity, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), nil
}
