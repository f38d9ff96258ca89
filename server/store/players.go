package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"lunars/server/glicko"
)

// Player is a rated player. The embedded rating is the one committed at
// the end of the last processed rating period.
type Player struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	glicko.Glicko2
}

const playerCols = `id, name, rating, deviation, volatility`

func scanPlayer(row pgx.Row) (Player, error) {
	var p Player
	err := row.Scan(&p.ID, &p.Name, &p.Rating, &p.Deviation, &p.Volatility)
	return p, err
}

func collectPlayers(rows pgx.Rows) ([]Player, error) {
	defer rows.Close()
	out := []Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePlayer inserts a player and returns it with its id.
func (db *DB) CreatePlayer(ctx context.Context, name string, g glicko.Glicko2) (Player, error) {
	p := Player{Name: name, Glicko2: g}
	err := db.QueryRow(ctx, `
		INSERT INTO players(name, rating, deviation, volatility)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, name, g.Rating, g.Deviation, g.Volatility).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return Player{}, ErrNameTaken
		}
		return Player{}, fmt.Errorf("create player %q: %w", name, err)
	}
	return p, nil
}

func (db *DB) PlayerByID(ctx context.Context, id int64) (Player, error) {
	p, err := scanPlayer(db.QueryRow(ctx, `SELECT `+playerCols+` FROM players WHERE id = $1`, id))
	return p, notFound(err)
}

func (db *DB) PlayerByName(ctx context.Context, name string) (Player, error) {
	p, err := scanPlayer(db.QueryRow(ctx, `SELECT `+playerCols+` FROM players WHERE name = $1`, name))
	return p, notFound(err)
}

// PlayerByIDOrName resolves a path or body reference to a player. A query
// that parses as an integer is looked up as an id first, which is why
// names may not be valid integers.
func (db *DB) PlayerByIDOrName(ctx context.Context, query string) (Player, error) {
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		p, err := db.PlayerByID(ctx, id)
		if !errors.Is(err, ErrNotFound) {
			return p, err
		}
	}
	return db.PlayerByName(ctx, query)
}

func (db *DB) ListPlayers(ctx context.Context, q QueryParams) ([]Player, error) {
	sql, args := q.playersSQL(`SELECT ` + playerCols + ` FROM players`)
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return collectPlayers(rows)
}

// SearchPlayers lists players whose name contains the search string,
// case-insensitively.
func (db *DB) SearchPlayers(ctx context.Context, search string, q QueryParams) ([]Player, error) {
	sql, args := q.playersSQL(`SELECT `+playerCols+` FROM players WHERE name ILIKE $1`, "%"+escapeLike(search)+"%")
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search players: %w", err)
	}
	return collectPlayers(rows)
}
