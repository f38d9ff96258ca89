package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SortKey orders results by one whitelisted column.
type SortKey struct {
	Column string
	Desc   bool
}

// QueryParams are the optional filters accepted by the list endpoints.
// Nil pointers and zero Limit/Offset mean "not set".
type QueryParams struct {
	// players
	MinRating, MaxRating         *float64
	MinDeviation, MaxDeviation   *float64
	MinVolatility, MaxVolatility *float64

	// matches
	After, Before *time.Time
	RatingPeriod  *int64
	HasPlayer     []int64

	// rating periods
	StartAfter, StartBefore *time.Time
	EndAfter, EndBefore     *time.Time

	Sort   []SortKey
	Limit  int
	Offset int
}

// Sortable columns per table. Rating period columns are exposed as
// start/end and stored as start_at/end_at.
var (
	playerColumns = map[string]string{
		"id": "id", "name": "name", "rating": "rating", "deviation": "deviation", "volatility": "volatility",
	}
	matchColumns = map[string]string{
		"id": "id", "rating_period": "rating_period", "player_a": "player_a", "player_b": "player_b",
		"score_a": "score_a", "score_b": "score_b", "ping_a": "ping_a", "ping_b": "ping_b",
		"rating_a": "rating_a", "rating_b": "rating_b", "deviation_a": "deviation_a", "deviation_b": "deviation_b",
		"volatility_a": "volatility_a", "volatility_b": "volatility_b", "epoch": "epoch",
	}
	periodColumns = map[string]string{
		"id": "id", "start": "start_at", "end": "end_at",
	}
)

// ParseSort parses "col|asc,col2|desc". Columns without a direction get
// their natural default: ratings and epoch descending, everything else
// ascending. Unknown columns are skipped.
func ParseSort(s string) []SortKey {
	var out []SortKey
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		col, dir, hasDir := strings.Cut(part, "|")
		col = strings.ToLower(strings.TrimSpace(col))
		if !knownColumn(col) {
			continue
		}
		key := SortKey{Column: col, Desc: defaultDesc(col)}
		if hasDir {
			switch strings.ToLower(strings.TrimSpace(dir)) {
			case "asc":
				key.Desc = false
			case "desc":
				key.Desc = true
			}
		}
		out = append(out, key)
	}
	return out
}

func knownColumn(col string) bool {
	_, p := playerColumns[col]
	_, m := matchColumns[col]
	_, r := periodColumns[col]
	return p || m || r
}

func defaultDesc(col string) bool {
	switch col {
	case "rating", "rating_a", "rating_b", "epoch":
		return true
	}
	return false
}

// builder accumulates WHERE conditions with $n placeholders.
type builder struct {
	conds []string
	args  []any
}

func (b *builder) add(cond string, args ...any) {
	for _, a := range args {
		b.args = append(b.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.conds = append(b.conds, cond)
}

func (b *builder) floatRange(col string, lo, hi *float64) {
	if lo != nil {
		b.add(col+" >= ?", *lo)
	}
	if hi != nil {
		b.add(col+" <= ?", *hi)
	}
}

func (b *builder) timeBounds(col string, after, before *time.Time) {
	if after != nil {
		b.add(col+" > ?", *after)
	}
	if before != nil {
		b.add(col+" < ?", *before)
	}
}

func (b *builder) finish(base string, q QueryParams, columns map[string]string, defaultOrder string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(base)
	if len(b.conds) > 0 {
		if strings.Contains(strings.ToUpper(base), " WHERE ") {
			sb.WriteString(" AND ")
		} else {
			sb.WriteString(" WHERE ")
		}
		sb.WriteString(strings.Join(b.conds, " AND "))
	}

	var order []string
	for _, k := range q.Sort {
		col, ok := columns[k.Column]
		if !ok {
			continue
		}
		if k.Desc {
			order = append(order, col+" DESC")
		} else {
			order = append(order, col+" ASC")
		}
	}
	if len(order) == 0 {
		order = []string{defaultOrder}
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(order, ", "))

	if q.Limit > 0 {
		b.args = append(b.args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(b.args))
	}
	if q.Offset > 0 {
		b.args = append(b.args, q.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(b.args))
	}
	return sb.String(), b.args
}

func (q QueryParams) playersSQL(base string, args ...any) (string, []any) {
	b := &builder{args: args}
	b.floatRange("rating", q.MinRating, q.MaxRating)
	b.floatRange("deviation", q.MinDeviation, q.MaxDeviation)
	b.floatRange("volatility", q.MinVolatility, q.MaxVolatility)
	return b.finish(base, q, playerColumns, "id ASC")
}

func (q QueryParams) matchesSQL(base string, args ...any) (string, []any) {
	b := &builder{args: args}
	for _, id := range q.HasPlayer {
		b.add("(player_a = ? OR player_b = ?)", id, id)
	}
	b.timeBounds("epoch", q.After, q.Before)
	if q.RatingPeriod != nil {
		b.add("rating_period = ?", *q.RatingPeriod)
	}
	return b.finish(base, q, matchColumns, "epoch DESC")
}

func (q QueryParams) periodsSQL(base string, args ...any) (string, []any) {
	b := &builder{args: args}
	b.timeBounds("start_at", q.StartAfter, q.StartBefore)
	b.timeBounds("end_at", q.EndAfter, q.EndBefore)
	return b.finish(base, q, periodColumns, "id DESC")
}

// ApplyToPlayers filters, sorts and pages an in-memory slice the same way
// the SQL for players would. Used for live ratings, which exist only in
// memory.
func (q QueryParams) ApplyToPlayers(players []Player) []Player {
	in := func(v float64, lo, hi *float64) bool {
		return (lo == nil || v >= *lo) && (hi == nil || v <= *hi)
	}
	out := make([]Player, 0, len(players))
	for _, p := range players {
		if in(p.Rating, q.MinRating, q.MaxRating) &&
			in(p.Deviation, q.MinDeviation, q.MaxDeviation) &&
			in(p.Volatility, q.MinVolatility, q.MaxVolatility) {
			out = append(out, p)
		}
	}

	keys := q.Sort
	if len(keys) == 0 {
		keys = []SortKey{{Column: "id"}}
	}
	sort.SliceStable(out, func(i, j int) bool {
		for _, k := range keys {
			c := comparePlayers(out[i], out[j], k.Column)
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Player{}
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}

func comparePlayers(a, b Player, col string) int {
	cmpFloat := func(x, y float64) int {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	switch col {
	case "id":
		return cmpFloat(float64(a.ID), float64(b.ID))
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "rating":
		return cmpFloat(a.Rating, b.Rating)
	case "deviation":
		return cmpFloat(a.Deviation, b.Deviation)
	case "volatility":
		return cmpFloat(a.Volatility, b.Volatility)
	}
	return 0
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
