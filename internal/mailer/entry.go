package mailer

// The SMTP server configurations and the email templates obey the same
// rule: at most one entry of a collection carries the default flag, and a
// non-empty collection always has exactly one after a mutation. The
// bookkeeping below is shared by both collections; only the storage calls
// differ.

// entry is satisfied by pointers to the collection element types.
type entry interface {
	Key() string
	DefaultFlag() bool
	SetDefaultFlag(bool)
}

// clearOtherDefaults demotes every entry except the one with id keep.
// It returns the ids whose flag changed.
func clearOtherDefaults[T any, P interface {
	*T
	entry
}](entries []T, keep string) []string {
	var changed []string
	for i := range entries {
		p := P(&entries[i])
		if p.Key() != keep && p.DefaultFlag() {
			p.SetDefaultFlag(false)
			changed = append(changed, p.Key())
		}
	}
	return changed
}

// electDefault promotes the first entry when none carries the default
// flag. It returns the promoted id, or "" when nothing changed.
func electDefault[T any, P interface {
	*T
	entry
}](entries []T) string {
	if len(entries) == 0 {
		return ""
	}
	for i := range entries {
		if P(&entries[i]).DefaultFlag() {
			return ""
		}
	}
	p := P(&entries[0])
	p.SetDefaultFlag(true)
	return p.Key()
}

// defaultIndex returns the index of the flagged default, falling back to
// the first entry. Returns -1 on an empty collection.
func defaultIndex[T any, P interface {
	*T
	entry
}](entries []T) int {
	if len(entries) == 0 {
		return -1
	}
	for i := range entries {
		if P(&entries[i]).DefaultFlag() {
			return i
		}
	}
	return 0
}

// indexByKey returns the index of the entry with the given id, or -1.
func indexByKey[T any, P interface {
	*T
	entry
}](entries []T, id string) int {
	for i := range entries {
		if P(&entries[i]).Key() == id {
			return i
		}
	}
	return -1
}
