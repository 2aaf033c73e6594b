package game

import (
	"fmt"
	"math/rand/v2"
)

// TotalTiles is the size of a full bunch.
const TotalTiles = 144

// distribution is the physical Bananagrams letter set.
var distribution = []struct {
	letter string
	count  int
}{
	{"A", 13}, {"B", 3}, {"C", 3}, {"D", 6}, {"E", 18}, {"F", 3}, {"G", 4},
	{"H", 3}, {"I", 12}, {"J", 2}, {"K", 2}, {"L", 5}, {"M", 3}, {"N", 8},
	{"O", 11}, {"P", 3}, {"Q", 2}, {"R", 9}, {"S", 6}, {"T", 9}, {"U", 6},
	{"V", 3}, {"W", 3}, {"X", 2}, {"Y", 3}, {"Z", 2},
}

// Pool is the face-down bunch shared by a room.
type Pool struct {
	tiles []string
	rng   *rand.Rand
}

func NewPool(rng *rand.Rand) *Pool {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Pool{rng: rng}
}

// Reset refills the pool with the full distribution and shuffles it.
func (p *Pool) Reset() {
	p.tiles = p.tiles[:0]
	for _, d := range distribution {
		for i := 0; i < d.count; i++ {
			p.tiles = append(p.tiles, d.letter)
		}
	}
	p.shuffle()
}

// Clear drops every tile; the next game starts from an empty pool.
func (p *Pool) Clear() {
	p.tiles = nil
}

func (p *Pool) Len() int {
	return len(p.tiles)
}

// Draw removes up to n tiles from the end of the pool.
func (p *Pool) Draw(n int) []string {
	if n > len(p.tiles) {
		n = len(p.tiles)
	}
	if n <= 0 {
		return nil
	}
	cut := len(p.tiles) - n
	drawn := make([]string, n)
	copy(drawn, p.tiles[cut:])
	p.tiles = p.tiles[:cut]
	return drawn
}

// DrawExact draws exactly n tiles or nothing at all.
func (p *Pool) DrawExact(n int) ([]string, error) {
	if len(p.tiles) < n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrPoolTooSmall, n, len(p.tiles))
	}
	return p.Draw(n), nil
}

// ReturnAndReshuffle puts tiles back and reshuffles the whole pool so returned
// letters do not sit in a predictable place.
func (p *Pool) ReturnAndReshuffle(tiles ...string) {
	p.tiles = append(p.tiles, tiles...)
	p.shuffle()
}

// Fisher-Yates.
func (p *Pool) shuffle() {
	for i := len(p.tiles) - 1; i > 0; i-- {
		j := p.rng.IntN(i + 1)
		p.tiles[i], p.tiles[j] = p.tiles[j], p.tiles[i]
	}
}

// handSize is the deal for a game of n players.
func handSize(n int) int {
	switch {
	case n <= 4:
		return 21
	case n <= 6:
		return 15
	default:
		return 11
	}
}
