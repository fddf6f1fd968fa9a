// Package directory is the narrow read-only client for the external
// Directory service (player profile / rating / clan). This core never
// writes to it; a player's rating is read once per matchmaking join, and
// an opponent's profile is read once per resolved match.
package directory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embergrid/animalcombat/internal/rating"
)

// Profile is the read-only player record this core consumes.
type Profile struct {
	ID          int64         `json:"id"`
	Rating      rating.Rating `json:"rating"`
	DisplayName string        `json:"display_name"`
	ClanName    string        `json:"clan_name,omitempty"`
}

// Directory is the external collaborator boundary. A single method for
// "my own rating" and one for "an opponent's public profile" are the only
// two shapes this core needs, mirroring the two queries in the reference
// implementation's battle.rs.
type Directory interface {
	GetOwnRating(ctx context.Context, playerID int64) (rating.Rating, error)
	GetOpponentProfile(ctx context.Context, playerID int64) (Profile, error)
}

// PostgresDirectory implements Directory against the players/clans
// relational schema this core treats as out of scope to
// migrate or own, but which this core does read from.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresDirectory wraps an already-connected pool.
func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

// GetOwnRating mirrors: SELECT glory, deviation FROM players WHERE id = $1
func (d *PostgresDirectory) GetOwnRating(ctx context.Context, playerID int64) (rating.Rating, error) {
	var mean float64
	var deviation float64
	err := d.pool.QueryRow(ctx,
		`SELECT glory, deviation FROM players WHERE id = $1`, playerID,
	).Scan(&mean, &deviation)
	if err != nil {
		return rating.Rating{}, fmt.Errorf("directory: loading rating for player %d: %w", playerID, err)
	}
	return rating.Rating{Mean: mean, Deviation: deviation}, nil
}

// GetOpponentProfile mirrors the LEFT JOIN clans variant used to resolve
// display fields for a FindMatch event.
func (d *PostgresDirectory) GetOpponentProfile(ctx context.Context, playerID int64) (Profile, error) {
	var p Profile
	p.ID = playerID
	var clanName *string
	err := d.pool.QueryRow(ctx,
		`SELECT glory, nickname, clans.name
		   FROM players
		   LEFT JOIN clans ON clans.id = players.clan_id
		  WHERE players.id = $1`, playerID,
	).Scan(&p.Rating.Mean, &p.DisplayName, &clanName)
	if err != nil {
		return Profile{}, fmt.Errorf("directory: loading opponent profile for player %d: %w", playerID, err)
	}
	if clanName != nil {
		p.ClanName = *clanName
	}
	return p, nil
}
