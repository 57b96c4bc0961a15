package db

import (
	"database/sql"
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "is": true,
	"it": true, "and": true, "or": true, "with": true, "from": true,
	"by": true, "this": true, "that": true, "as": true, "be": true,
	"le": true, "la": true, "les": true, "de": true, "des": true,
	"du": true, "un": true, "une": true, "et": true, "ou": true,
}

// searchTerms splits a query on whitespace, trims punctuation and drops
// stopwords and words shorter than 3 characters.
func searchTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(query) {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if len([]rune(trimmed)) < 3 {
			continue
		}
		if stopwords[strings.ToLower(trimmed)] {
			continue
		}
		terms = append(terms, trimmed)
	}
	return terms
}

// BuildFTSQuery turns a natural language query into an FTS5 expression:
// quoted prefix terms joined with OR.
func BuildFTSQuery(query string) string {
	terms := searchTerms(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	return strings.Join(terms, " OR ")
}

// likeTerms keeps every non-stopword of query regardless of length, for the
// LIKE scan.
func likeTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(query) {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if trimmed == "" || stopwords[strings.ToLower(trimmed)] {
			continue
		}
		terms = append(terms, trimmed)
	}
	return terms
}

// SearchNodes finds nodes whose title or content matches query, best match first.
// Falls back to a LIKE scan when the FTS table is unavailable or when the
// query only has words too short for the index.
func (d *DB) SearchNodes(query string, limit int) ([]Node, error) {
	if limit <= 0 {
		limit = 20
	}
	ftsQuery := BuildFTSQuery(query)
	short := likeTerms(query)
	if ftsQuery == "" && len(short) == 0 {
		return []Node{}, nil
	}

	var nodes []Node
	err := d.withTx(func(tx *sql.Tx) error {
		if !d.fts || ftsQuery == "" {
			var err error
			nodes, err = likeSearch(tx, short, limit)
			return err
		}
		rows, err := tx.Query(`
			SELECT n.id, n.parent_id, n.title, n.content, n.collapsed
			FROM nodes n
			JOIN nodes_fts fts ON n.id = fts.rowid
			WHERE nodes_fts MATCH ?
			ORDER BY rank
			LIMIT ?
		`, ftsQuery, limit)
		if err != nil {
			return err
		}
		nodes, err = scanNodes(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, nil
}

func likeSearch(tx *sql.Tx, terms []string, limit int) ([]Node, error) {
	var (
		clauses []string
		args    []any
	)
	for _, t := range terms {
		clauses = append(clauses, `(title LIKE ? OR content LIKE ?)`)
		pattern := "%" + t + "%"
		args = append(args, pattern, pattern)
	}
	args = append(args, limit)
	rows, err := tx.Query(`SELECT `+nodeColumns+` FROM nodes WHERE `+
		strings.Join(clauses, " OR ")+` ORDER BY id LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	return scanNodes(rows)
}
