package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"lunars/server/glicko"
)

// RatingPeriod is the span of time whose matches are committed into
// players' ratings together when it ends.
type RatingPeriod struct {
	ID        int64     `json:"id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Processed bool      `json:"processed"`
}

func (p RatingPeriod) Duration() time.Duration { return p.End.Sub(p.Start) }

// Active reports whether now lies within [Start, End).
func (p RatingPeriod) Active(now time.Time) bool {
	return !now.Before(p.Start) && now.Before(p.End)
}

// Completion is how many periods have elapsed since Start: 0 at Start,
// 1 at End, more after that.
func (p RatingPeriod) Completion(now time.Time) float64 {
	d := p.Duration().Milliseconds()
	if d <= 0 {
		return 1
	}
	return float64(now.Sub(p.Start).Milliseconds()) / float64(d)
}

const periodCols = `id, start_at, end_at, processed`

func scanPeriod(row pgx.Row) (RatingPeriod, error) {
	var p RatingPeriod
	err := row.Scan(&p.ID, &p.Start, &p.End, &p.Processed)
	return p, err
}

func (db *DB) CreateRatingPeriod(ctx context.Context, start, end time.Time) (RatingPeriod, error) {
	p := RatingPeriod{Start: start, End: end}
	err := db.QueryRow(ctx, `
		INSERT INTO rating_periods(start_at, end_at)
		VALUES ($1,$2)
		RETURNING id
	`, start, end).Scan(&p.ID)
	if err != nil {
		return RatingPeriod{}, fmt.Errorf("create rating period: %w", err)
	}
	return p, nil
}

func (db *DB) RatingPeriodByID(ctx context.Context, id int64) (RatingPeriod, error) {
	p, err := scanPeriod(db.QueryRow(ctx, `SELECT `+periodCols+` FROM rating_periods WHERE id = $1`, id))
	return p, notFound(err)
}

// ActiveRatingPeriod returns the latest period that contains now.
func (db *DB) ActiveRatingPeriod(ctx context.Context, now time.Time) (RatingPeriod, error) {
	p, err := scanPeriod(db.QueryRow(ctx, `
		SELECT `+periodCols+`
		  FROM rating_periods
		 WHERE start_at <= $1 AND end_at > $1
		 ORDER BY id DESC
		 LIMIT 1
	`, now))
	return p, notFound(err)
}

func (db *DB) ListRatingPeriods(ctx context.Context, q QueryParams) ([]RatingPeriod, error) {
	sql, args := q.periodsSQL(`SELECT ` + periodCols + ` FROM rating_periods`)
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list rating periods: %w", err)
	}
	return collectPeriods(rows)
}

// UnprocessedRatingPeriods returns periods that ended before now but were
// never committed, oldest first.
func (db *DB) UnprocessedRatingPeriods(ctx context.Context, now time.Time) ([]RatingPeriod, error) {
	rows, err := db.Query(ctx, `
		SELECT `+periodCols+`
		  FROM rating_periods
		 WHERE NOT processed AND end_at <= $1
		 ORDER BY end_at, id
	`, now)
	if err != nil {
		return nil, fmt.Errorf("unprocessed rating periods: %w", err)
	}
	return collectPeriods(rows)
}

// RateFunc returns the new rating of every player given a period's
// matches. It must not have side effects; it runs inside a transaction.
type RateFunc func(players []Player, matches []glicko.Match) []Player

// CommitRatingPeriod rates a period and stores the result atomically: the
// new player ratings and the period's processed flag are written in one
// transaction, or not at all.
//
// The period row is locked before its matches are read, so a concurrent
// AddMatch into the period either lands before the read or fails with
// ErrPeriodClosed. A period that is already processed yields
// ErrPeriodClosed and writes nothing.
func (db *DB) CommitRatingPeriod(ctx context.Context, id int64, rate RateFunc) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // safe if already committed

	var processed bool
	err = tx.QueryRow(ctx, `SELECT processed FROM rating_periods WHERE id = $1 FOR UPDATE`, id).Scan(&processed)
	if err != nil {
		return notFound(err)
	}
	if processed {
		return ErrPeriodClosed
	}

	rows, err := tx.Query(ctx, `
		SELECT `+matchCols+`
		  FROM matches
		 WHERE rating_period = $1
		 ORDER BY epoch, id
	`, id)
	if err != nil {
		return fmt.Errorf("commit rating period %d: %w", id, err)
	}
	matches, err := collectMatches(rows)
	if err != nil {
		return fmt.Errorf("commit rating period %d: %w", id, err)
	}

	rows, err = tx.Query(ctx, `SELECT `+playerCols+` FROM players ORDER BY id`)
	if err != nil {
		return fmt.Errorf("commit rating period %d: %w", id, err)
	}
	players, err := collectPlayers(rows)
	if err != nil {
		return fmt.Errorf("commit rating period %d: %w", id, err)
	}

	batch := &pgx.Batch{}
	for _, p := range rate(players, matches) {
		batch.Queue(`
			UPDATE players
			   SET rating = $2, deviation = $3, volatility = $4
			 WHERE id = $1
		`, p.ID, p.Rating, p.Deviation, p.Volatility)
	}
	batch.Queue(`UPDATE rating_periods SET processed = TRUE WHERE id = $1`, id)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("commit rating period %d: %w", id, err)
	}
	return tx.Commit(ctx)
}

func collectPeriods(rows pgx.Rows) ([]RatingPeriod, error) {
	defer rows.Close()
	out := []RatingPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
