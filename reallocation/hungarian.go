package reallocation

import "math"

// hungarianInf stands in for "forbidden" in the padded cost matrix.
// Ported in idiom from
// banshee-data-velocity.report/internal/lidar/hungarian.go's
// cluster-to-track assignment solver — same potentials/augmenting-path
// structure and 1-indexed internal arrays, adapted from float32
// squared-Mahalanobis costs to float64 Euclidean/predicted-horizon
// costs (spec.md §4.7 never needs a gating threshold: every agent must
// end up assigned to exactly one goal, so nothing is ever "forbidden"
// here — the padding only matters for non-square inputs, which this
// module never produces since N_cmd agents always match N_cmd goals).
const hungarianInf = math.MaxFloat64 / 4

// HungarianAssign solves the square minimum-cost perfect-matching
// problem for an n×n cost matrix using Kuhn–Munkres with potentials
// (Jonker–Volgenant variant). Returns assignment[i] = column assigned
// to row i, and the total cost of the matching.
func HungarianAssign(cost [][]float64) ([]int, float64) {
	n := len(cost)
	if n == 0 {
		return nil, 0
	}

	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := 0; j <= n; j++ {
			minv[j] = hungarianInf
		}

		for {
			used[j0] = true
			i0 := p[j0]
			delta := hungarianInf
			j1 := -1

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 < 0 {
				break
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if p[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			p[j0] = p[way[j0]]
			j0 = way[j0]
		}
	}

	assignment := make([]int, n)
	var totalCost float64
	for j := 1; j <= n; j++ {
		if p[j] > 0 {
			row := p[j] - 1
			col := j - 1
			assignment[row] = col
			totalCost += cost[row][col]
		}
	}
	return assignment, totalCost
}
