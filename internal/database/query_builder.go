// OtakuConnect - Anime and Manga Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/otakuconnect

package database

import (
	"fmt"
	"strings"

	"github.com/tomtom215/otakuconnect/internal/recommend"
)

// buildContentQuery renders q as a driver-bound SELECT.
//
// Example (postgres):
//
//	q := recommend.CompiledQuery{MediaType: models.MediaAnime, Predicates: ..., Limit: 5}
//	// SELECT id, title, ... FROM anime WHERE (genres ILIKE $1) ORDER BY rank ASC NULLS LAST LIMIT $2
func (db *DB) buildContentQuery(q *recommend.CompiledQuery) (string, []interface{}, error) {
	if !q.MediaType.Valid() {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, q.MediaType)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columnsFor(q.MediaType))
	b.WriteString(" FROM ")
	b.WriteString(q.MediaType.Table())

	where, args := q.Where()
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	order, err := q.OrderClause()
	if err != nil {
		return "", nil, err
	}
	if order != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	if q.Offset > 0 {
		b.WriteString(" OFFSET ?")
		args = append(args, q.Offset)
	}

	return db.conn.Rebind(b.String()), args, nil
}

// buildCountQuery renders a COUNT(*) over q's predicates only.
//
// Example (postgres):
//
//	// SELECT COUNT(*) FROM manga WHERE mean >= $1
func (db *DB) buildCountQuery(q *recommend.CompiledQuery) (string, []interface{}, error) {
	if !q.MediaType.Valid() {
		return "", nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, q.MediaType)
	}

	query := "SELECT COUNT(*) FROM " + q.MediaType.Table()
	where, args := q.Where()
	if where != "" {
		query += " WHERE " + where
	}
	return db.conn.Rebind(query), args, nil
}

// buildInsert creates a parameterized INSERT for columns.
//
// Example:
//
//	buildInsert("anime", []string{"id", "title"})
//	// INSERT INTO anime (id, title) VALUES (?, ?)
func buildInsert(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}
