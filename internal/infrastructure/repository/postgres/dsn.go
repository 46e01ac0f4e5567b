package postgres

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DSNOptions are lib/pq connection parameters applied on top of DB_URL.
type DSNOptions struct {
	SSLMode string
	// BinaryParameters lets lib/pq skip the unnamed prepare round trip, which
	// transaction-mode poolers such as pgbouncer or the Supabase pooler reject.
	BinaryParameters bool
}

func (o DSNOptions) params() [][2]string {
	var out [][2]string
	if mode := strings.TrimSpace(o.SSLMode); mode != "" {
		out = append(out, [2]string{"sslmode", mode})
	}
	if o.BinaryParameters {
		out = append(out, [2]string{"binary_parameters", "yes"})
	}
	return out
}

// NormalizeDSN applies opts to a URL or key/value DSN. Parameters already
// present in raw are left alone.
func NormalizeDSN(raw string, opts DSNOptions) string {
	raw = strings.TrimSpace(raw)
	params := opts.params()
	if raw == "" || len(params) == 0 {
		return raw
	}

	if isURLDSN(raw) {
		parsed, err := url.Parse(raw)
		if err != nil {
			return raw
		}
		query := parsed.Query()
		for _, p := range params {
			if query.Get(p[0]) == "" {
				query.Set(p[0], p[1])
			}
		}
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	present := make(map[string]struct{})
	for _, token := range strings.Fields(raw) {
		if key, _, ok := strings.Cut(token, "="); ok {
			present[key] = struct{}{}
		}
	}
	var b strings.Builder
	b.WriteString(raw)
	for _, p := range params {
		if _, ok := present[p[0]]; ok {
			continue
		}
		b.WriteString(" " + p[0] + "=" + p[1])
	}
	return b.String()
}

// DatabaseName extracts the database name for span and log attributes.
func DatabaseName(raw string) string {
	raw = strings.TrimSpace(raw)
	if isURLDSN(raw) {
		parsed, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return strings.Trim(parsed.Path, "/ ")
	}
	for _, token := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

func isURLDSN(raw string) bool {
	return strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://")
}

const maxTracedQueryLength = 512

var (
	sqlLineComment = regexp.MustCompile(`--[^\n]*`)
	sqlWhitespace  = regexp.MustCompile(`\s+`)
)

// FormatQueryForTrace flattens a statement onto one line for db.statement
// span attributes, dropping line comments and capping its length.
func FormatQueryForTrace(query string) string {
	query = sqlLineComment.ReplaceAllString(query, " ")
	query = strings.TrimSpace(sqlWhitespace.ReplaceAllString(query, " "))
	if len(query) <= maxTracedQueryLength {
		return query
	}
	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(query[cut]) {
		cut--
	}
	return query[:cut] + "..."
}
