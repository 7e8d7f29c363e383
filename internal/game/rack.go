package game

import (
	"errors"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Placement is where a ball goes when racking.
type Placement struct {
	Number   int
	Position mgl64.Vec3
}

// RackLayout describes the break position: the cue ball on its spot and the
// fifteen object balls in a five-row triangle whose apex sits on ApexSpot.
// Rows grow along -Z, columns along +X.
type RackLayout struct {
	Diameter float64
	CueSpot  mgl64.Vec3
	ApexSpot mgl64.Vec3
}

const rackRows = 5

// Placements returns the cue ball followed by the triangle. The 8-ball sits in
// the middle of the third row; the other fourteen are shuffled with rng.
func (l RackLayout) Placements(rng *rand.Rand) []Placement {
	numbers := make([]int, 0, NumBalls-2)
	for n := 1; n < NumBalls; n++ {
		if n != BlackBallNumber {
			numbers = append(numbers, n)
		}
	}
	// Fisher-Yates
	for i := len(numbers) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		numbers[i], numbers[j] = numbers[j], numbers[i]
	}

	d := l.Diameter
	rowStep := d * math.Sqrt(3) / 2

	out := make([]Placement, 0, NumBalls)
	out = append(out, Placement{Number: CueBallNumber, Position: l.CueSpot})

	next := 0
	for row := 0; row < rackRows; row++ {
		for col := 0; col <= row; col++ {
			var n int
			if row == 2 && col == 1 {
				n = BlackBallNumber
			} else {
				n = numbers[next]
				next++
			}
			pos := l.ApexSpot.Add(mgl64.Vec3{
				float64(col)*d - float64(row)*d/2,
				0,
				-float64(row) * rowStep,
			})
			out = append(out, Placement{Number: n, Position: pos})
		}
	}
	return out
}

// Rack clears the table through the spawner and places a fresh rack.
func (l RackLayout) Rack(sp Spawner, rng *rand.Rand) ([]*Ball, error) {
	if sp == nil {
		return nil, errors.New("no spawner to rack with")
	}
	if l.Diameter <= 0 {
		return nil, errors.New("ball diameter must be positive")
	}
	sp.Clear()
	placements := l.Placements(rng)
	balls := make([]*Ball, 0, len(placements))
	for _, p := range placements {
		if b := sp.Spawn(p.Number, p.Position); b != nil {
			balls = append(balls, b)
		}
	}
	return balls, nil
}
