package ranking

import (
	"sort"
	"strings"
)

// Build folds contributions into a ranking table over members. Every member
// appears exactly once; contributions of non-members are ignored. Entries are
// ordered by total descending then user id ascending, and positions run 1..N.
func Build(members []Member, contribs []Contribution, opts Options) Table {
	inCohort := make(map[int64]struct{}, len(members))
	for _, m := range members {
		inCohort[m.UserID] = struct{}{}
	}

	scoped := make([]Contribution, 0, len(contribs))
	for _, c := range contribs {
		if _, ok := inCohort[c.UserID]; !ok {
			continue
		}
		if c.Round == "" {
			continue
		}
		if opts.Round != "" && c.Round != opts.Round {
			continue
		}
		scoped = append(scoped, c)
	}

	rounds := ActiveRounds(scoped)

	byUser := make(map[int64]map[string]int, len(members))
	for _, c := range scoped {
		perRound, ok := byUser[c.UserID]
		if !ok {
			perRound = make(map[string]int)
			byUser[c.UserID] = perRound
		}
		perRound[c.Round] += c.Points
	}

	seen := make(map[int64]struct{}, len(members))
	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		if _, dup := seen[m.UserID]; dup {
			continue
		}
		seen[m.UserID] = struct{}{}

		entry := Entry{
			UserID: m.UserID,
			Name:   m.Name,
			Email:  m.Email,
			Rounds: make(map[string]int, len(rounds)),
		}
		for _, r := range rounds {
			pts := byUser[m.UserID][r]
			entry.Rounds[r] = pts
			entry.Total += pts
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Total != entries[j].Total {
			return entries[i].Total > entries[j].Total
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Position = i + 1
	}

	return Table{Rounds: rounds, Entries: entries}
}

// ActiveRounds returns the distinct non-empty round labels in natural order.
func ActiveRounds(contribs []Contribution) []string {
	set := make(map[string]struct{})
	for _, c := range contribs {
		if c.Round == "" {
			continue
		}
		set[c.Round] = struct{}{}
	}

	rounds := make([]string, 0, len(set))
	for r := range set {
		rounds = append(rounds, r)
	}
	sort.Slice(rounds, func(i, j int) bool { return naturalLess(rounds[i], rounds[j]) })
	return rounds
}

// MembersFromContributions derives the global cohort: every user with at
// least one contribution, resolved through lookup.
func MembersFromContributions(contribs []Contribution, lookup map[int64]Member) []Member {
	seen := make(map[int64]struct{})
	out := make([]Member, 0)
	for _, c := range contribs {
		if _, ok := seen[c.UserID]; ok {
			continue
		}
		seen[c.UserID] = struct{}{}

		m, ok := lookup[c.UserID]
		if !ok {
			m = Member{UserID: c.UserID}
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// PositionOf returns the 1-based position of userID, or 0 if absent.
func PositionOf(table Table, userID int64) int {
	for _, e := range table.Entries {
		if e.UserID == userID {
			return e.Position
		}
	}
	return 0
}

// EntryOf returns the entry for userID.
func EntryOf(table Table, userID int64) (Entry, bool) {
	for _, e := range table.Entries {
		if e.UserID == userID {
			return e, true
		}
	}
	return Entry{}, false
}

// naturalLess compares digit runs numerically, e.g. "Round 2" < "Round 10".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		ad, bd := isDigit(a[0]), isDigit(b[0])
		switch {
		case ad && bd:
			an, arest := leadingDigits(a)
			bn, brest := leadingDigits(b)
			at, bt := strings.TrimLeft(an, "0"), strings.TrimLeft(bn, "0")
			if len(at) != len(bt) {
				return len(at) < len(bt)
			}
			if at != bt {
				return at < bt
			}
			if len(an) != len(bn) {
				return len(an) < len(bn)
			}
			a, b = arest, brest
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
