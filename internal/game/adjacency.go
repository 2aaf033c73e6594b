package game

import (
	"fmt"
	"math"
	"strings"
)

const (
	DefaultTileSpacing   = 50.0
	DefaultTileTolerance = 5.0
)

// Tile is one placed tile as reported by a client. Coordinates are whatever
// the client's camera uses; only their deltas matter.
type Tile struct {
	ID       string   `json:"id"`
	Letter   string   `json:"letter"`
	X        *float64 `json:"x"`
	Y        *float64 `json:"y"`
	Placed   bool     `json:"placed"`
	Revealed bool     `json:"revealed"`
}

type cell struct {
	col, row int
}

// Validator decides whether a layout is a connected orthogonal grid.
type Validator struct {
	Spacing   float64
	Tolerance float64
}

func DefaultValidator() Validator {
	return Validator{Spacing: DefaultTileSpacing, Tolerance: DefaultTileTolerance}
}

// Valid reports whether tiles form an acceptable grid.
func (v Validator) Valid(tiles []Tile) bool {
	return v.Validate(tiles) == nil
}

// Validate snaps every tile to a grid anchored on the first tile and checks
// alignment, overlap and that each tile touches at least one other tile.
// Every tile having a neighbour is the acceptance rule; disjoint groups that
// each satisfy it pass.
func (v Validator) Validate(tiles []Tile) error {
	if err := Sanitize(tiles, false); err != nil {
		return err
	}
	spacing := v.Spacing
	if spacing <= 0 {
		spacing = DefaultTileSpacing
	}

	ax, ay := *tiles[0].X, *tiles[0].Y
	occupied := make(map[cell]struct{}, len(tiles))
	cells := make([]cell, len(tiles))

	for i, t := range tiles {
		dx, dy := *t.X-ax, *t.Y-ay
		col := math.Round(dx / spacing)
		row := math.Round(dy / spacing)
		if math.Abs(dx-col*spacing) > v.Tolerance || math.Abs(dy-row*spacing) > v.Tolerance {
			return fmt.Errorf("%w: tile %q is off the grid", ErrInvalidLayout, t.ID)
		}
		c := cell{col: int(col), row: int(row)}
		if _, dup := occupied[c]; dup {
			return fmt.Errorf("%w: tile %q overlaps another tile", ErrInvalidLayout, t.ID)
		}
		occupied[c] = struct{}{}
		cells[i] = c
	}

	for i, c := range cells {
		if !hasNeighbour(occupied, c) {
			return fmt.Errorf("%w: tile %q is not attached", ErrInvalidLayout, tiles[i].ID)
		}
	}
	return nil
}

func hasNeighbour(occupied map[cell]struct{}, c cell) bool {
	for _, n := range [4]cell{
		{c.col + 1, c.row}, {c.col - 1, c.row},
		{c.col, c.row + 1}, {c.col, c.row - 1},
	} {
		if _, ok := occupied[n]; ok {
			return true
		}
	}
	return false
}

// Sanitize rejects empty layouts, missing or non-finite coordinates and, when
// requireLetters is set, tiles without a letter.
func Sanitize(tiles []Tile, requireLetters bool) error {
	if len(tiles) == 0 {
		return fmt.Errorf("%w: no tiles", ErrInvalidLayout)
	}
	for _, t := range tiles {
		if !finite(t.X) || !finite(t.Y) {
			return fmt.Errorf("%w: tile %q has no position", ErrInvalidLayout, t.ID)
		}
		if requireLetters && strings.TrimSpace(t.Letter) == "" {
			return fmt.Errorf("%w: tile %q has no letter", ErrInvalidLayout, t.ID)
		}
	}
	return nil
}

func finite(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0)
}
