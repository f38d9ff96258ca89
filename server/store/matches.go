package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"lunars/server/glicko"
)

const matchCols = `id, rating_period, player_a, player_b, score_a, score_b, ping_a, ping_b,
	rating_a, rating_b, deviation_a, deviation_b, volatility_a, volatility_b, epoch`

func scanMatch(row pgx.Row) (glicko.Match, error) {
	var m glicko.Match
	err := row.Scan(&m.ID, &m.RatingPeriod, &m.PlayerA, &m.PlayerB, &m.ScoreA, &m.ScoreB, &m.PingA, &m.PingB,
		&m.RatingA, &m.RatingB, &m.DeviationA, &m.DeviationB, &m.VolatilityA, &m.VolatilityB, &m.Epoch)
	return m, err
}

func collectMatches(rows pgx.Rows) ([]glicko.Match, error) {
	defer rows.Close()
	out := []glicko.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMatch stores a match snapshot and returns it with its id. The insert
// only succeeds while the match's rating period is unprocessed; otherwise
// it returns ErrPeriodClosed. The shared lock on the period row orders it
// against CommitRatingPeriod.
func (db *DB) AddMatch(ctx context.Context, m glicko.Match) (glicko.Match, error) {
	err := db.QueryRow(ctx, `
		INSERT INTO matches(
			rating_period, player_a, player_b, score_a, score_b, ping_a, ping_b,
			rating_a, rating_b, deviation_a, deviation_b, volatility_a, volatility_b, epoch
		)
		SELECT id, $2::bigint, $3::bigint, $4::integer, $5::integer, $6::integer, $7::integer,
		       $8::float8, $9::float8, $10::float8, $11::float8, $12::float8, $13::float8, $14::timestamptz
		  FROM rating_periods
		 WHERE id = $1 AND NOT processed
		   FOR SHARE
		RETURNING id
	`, m.RatingPeriod, m.PlayerA, m.PlayerB, m.ScoreA, m.ScoreB, m.PingA, m.PingB,
		m.RatingA, m.RatingB, m.DeviationA, m.DeviationB, m.VolatilityA, m.VolatilityB, m.Epoch,
	).Scan(&m.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return glicko.Match{}, ErrPeriodClosed
	}
	if err != nil {
		return glicko.Match{}, fmt.Errorf("add match: %w", err)
	}
	return m, nil
}

func (db *DB) MatchByID(ctx context.Context, id int64) (glicko.Match, error) {
	m, err := scanMatch(db.QueryRow(ctx, `SELECT `+matchCols+` FROM matches WHERE id = $1`, id))
	return m, notFound(err)
}

func (db *DB) ListMatches(ctx context.Context, q QueryParams) ([]glicko.Match, error) {
	sql, args := q.matchesSQL(`SELECT ` + matchCols + ` FROM matches`)
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return collectMatches(rows)
}

// MatchesForPeriod returns every match of a rating period in epoch order.
func (db *DB) MatchesForPeriod(ctx context.Context, periodID int64) ([]glicko.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchCols+`
		  FROM matches
		 WHERE rating_period = $1
		 ORDER BY epoch, id
	`, periodID)
	if err != nil {
		return nil, fmt.Errorf("matches for period %d: %w", periodID, err)
	}
	return collectMatches(rows)
}

// PlayerMatchesForPeriod returns the matches of a rating period the player
// took part in, on either side.
func (db *DB) PlayerMatchesForPeriod(ctx context.Context, playerID, periodID int64) ([]glicko.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchCols+`
		  FROM matches
		 WHERE rating_period = $1 AND (player_a = $2 OR player_b = $2)
		 ORDER BY epoch, id
	`, periodID, playerID)
	if err != nil {
		return nil, fmt.Errorf("matches of player %d for period %d: %w", playerID, periodID, err)
	}
	return collectMatches(rows)
}
