// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/otakuconnect/internal/models"
)

// Predicate is one parameterized condition. Clause contains only column
// names from the catalog schema, operators and '?' placeholders; every
// user-derived value travels in Args.
type Predicate struct {
	Clause string        `json:"clause"`
	Args   []interface{} `json:"args"`
}

// Ordering is one ORDER BY term.
type Ordering struct {
	Column     string `json:"column"`
	Descending bool   `json:"descending"`
}

// Catalog columns that may appear in an ORDER BY term.
var orderableColumns = map[string]struct{}{
	"id":         {},
	"title":      {},
	"mean":       {},
	"rank":       {},
	"popularity": {},
	"start_date": {},
}

// SQL renders the term. NULLs always sort last so unranked or undated rows
// never lead a result.
func (o Ordering) SQL() (string, error) {
	if _, ok := orderableColumns[o.Column]; !ok {
		return "", fmt.Errorf("column %q is not orderable", o.Column)
	}
	dir := "ASC"
	if o.Descending {
		dir = "DESC"
	}
	return o.Column + " " + dir + " NULLS LAST", nil
}

// CompiledQuery is a bounded, ordered, filtered read of one catalog table.
type CompiledQuery struct {
	MediaType  models.MediaType `json:"media_type"`
	Predicates []Predicate      `json:"predicates"`
	OrderBy    []Ordering       `json:"order_by"`
	Limit      int              `json:"limit"`
	Offset     int              `json:"offset,omitempty"`
}

// Where joins the predicates with AND. It returns an empty clause when there
// are none.
func (q *CompiledQuery) Where() (string, []interface{}) {
	if len(q.Predicates) == 0 {
		return "", nil
	}
	clauses := make([]string, len(q.Predicates))
	var args []interface{}
	for i, p := range q.Predicates {
		clauses[i] = p.Clause
		args = append(args, p.Args...)
	}
	return strings.Join(clauses, " AND "), args
}

// OrderClause renders the ORDER BY list without the keyword.
func (q *CompiledQuery) OrderClause() (string, error) {
	if len(q.OrderBy) == 0 {
		return "", nil
	}
	terms := make([]string, len(q.OrderBy))
	for i, o := range q.OrderBy {
		sql, err := o.SQL()
		if err != nil {
			return "", err
		}
		terms[i] = sql
	}
	return strings.Join(terms, ", "), nil
}

// WatchHistory is the signal derived from a user's liked entities of one
// media type.
type WatchHistory struct {
	LikedIDs []int64
	Genres   []string
}

// Compiler turns intents into catalog queries. It is pure for a fixed clock.
type Compiler struct {
	cfg *Config
	now func() time.Time
}

// NewCompiler creates a compiler using the wall clock.
func NewCompiler(cfg *Config) *Compiler {
	return NewCompilerWithClock(cfg, time.Now)
}

// NewCompilerWithClock creates a compiler with an injected clock.
func NewCompilerWithClock(cfg *Config, now func() time.Time) *Compiler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Compiler{cfg: cfg, now: now}
}

// Compile builds the query for intent. Predicates appear in a fixed order:
// genres, watch history, status, absolute year, relative year.
//
//nolint:gocritic // hugeParam: intent passed by value for immutability
func (c *Compiler) Compile(intent Intent, history WatchHistory) CompiledQuery {
	media := intent.MediaType
	if !media.Valid() {
		media = DefaultMediaType
	}

	q := CompiledQuery{MediaType: media}

	if p, ok := genreMatch(intent.Genres); ok {
		q.Predicates = append(q.Predicates, p)
	}

	if intent.ConsiderWatchHistory && len(history.LikedIDs) > 0 {
		if p, ok := genreMatch(sortedUnique(history.Genres)); ok {
			q.Predicates = append(q.Predicates, p)
		}
	}

	switch intent.StatusFilter {
	case StatusOngoing:
		q.Predicates = append(q.Predicates, Predicate{Clause: "status = ?", Args: []interface{}{media.OngoingStatus()}})
	case StatusCompleted:
		q.Predicates = append(q.Predicates, Predicate{Clause: "status = ?", Args: []interface{}{media.CompletedStatus()}})
	}

	if intent.YearFrom != nil {
		q.Predicates = append(q.Predicates, yearFloor(*intent.YearFrom))
	}
	if intent.YearsBack != nil {
		q.Predicates = append(q.Predicates, yearFloor(c.now().Year()-*intent.YearsBack))
	}

	if intent.TopRated {
		q.OrderBy = append(q.OrderBy, Ordering{Column: "rank"})
	}
	if intent.Latest {
		q.OrderBy = append(q.OrderBy, Ordering{Column: "start_date", Descending: true})
	}

	q.Limit = clamp(intent.ResultCount, 1, c.cfg.MaxResults)
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern returns an ILIKE pattern matching s anywhere in a column.
// Wildcards in s match literally; pair it with an ESCAPE '\' clause.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ContainsMatch is a case-insensitive substring match of value on column.
// column must be a trusted identifier.
func ContainsMatch(column, value string) Predicate {
	return Predicate{Clause: column + ` ILIKE ? ESCAPE '\'`, Args: []interface{}{ContainsPattern(value)}}
}

// genreMatch requires the genre string to contain at least one of genres.
func genreMatch(genres []string) (Predicate, bool) {
	if len(genres) == 0 {
		return Predicate{}, false
	}
	terms := make([]string, len(genres))
	args := make([]interface{}, len(genres))
	for i, g := range genres {
		m := ContainsMatch("genres", g)
		terms[i] = m.Clause
		args[i] = m.Args[0]
	}
	return Predicate{Clause: "(" + strings.Join(terms, " OR ") + ")", Args: args}, true
}

func yearFloor(year int) Predicate {
	return Predicate{Clause: "EXTRACT(YEAR FROM start_date) >= ?", Args: []interface{}{year}}
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
