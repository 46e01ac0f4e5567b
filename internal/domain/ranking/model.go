package ranking

// Member is a user taking part in a ranking cohort.
type Member struct {
	UserID int64
	Name   string
	Email  string
}

// Contribution is points earned by a user in one round. Several rows for the
// same (user, round) are summed.
type Contribution struct {
	UserID int64
	Round  string
	Points int
}

type Options struct {
	// Round limits the table to a single round label when non-empty.
	Round string
}

type Entry struct {
	UserID   int64
	Name     string
	Email    string
	Rounds   map[string]int
	Total    int
	Position int
}

type Table struct {
	Rounds  []string
	Entries []Entry
}
