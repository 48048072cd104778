package format

import "time"

const (
	clockLayout = "03:04 PM"
	dateLayout  = "02/01/2006"
	separator   = " • "
)

// Timestamp humanizes a millisecond epoch relative to now. Calendar days are
// compared in now's location, so callers choose the zone by choosing now.
func Timestamp(ts int64, now time.Time) string {
	t := time.UnixMilli(ts).In(now.Location())
	clock := t.Format(clockLayout)

	switch {
	case sameDay(t, now):
		return "Today" + separator + clock
	case sameDay(t, now.AddDate(0, 0, -1)):
		return "Yesterday" + separator + clock
	default:
		return t.Format(dateLayout) + separator + clock
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
