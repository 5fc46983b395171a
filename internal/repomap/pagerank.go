// Copyright (C) 2026 Forge Agent Contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package repomap

const (
	damping       = 0.85
	maxIterations = 100
	convergence   = 1e-6
)

// pageRank computes standard iterative PageRank over g's directed
// reference graph (spec.md §4.2: "Compute PageRank on this graph with
// default damping"). No example repo in the corpus implements PageRank —
// this is the textbook power-iteration algorithm, hand-rolled per
// SPEC_FULL.md §4.2's note that this is the one place with no library
// seam in the examples (the reference graph shape is repomap-specific,
// not a generic graph library's input).
func pageRank(g *graph) map[int]float64 {
	n := len(g.idNodes)
	if n == 0 {
		return nil
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	outDegree := make([]int, n)
	for from, tos := range g.edges {
		outDegree[from] = len(tos)
	}

	for iter := 0; iter < maxIterations; iter++ {
		next := make([]float64, n)
		base := (1 - damping) / float64(n)
		for i := range next {
			next[i] = base
		}

		// Dangling mass (nodes with no outgoing edges) redistributes
		// uniformly, standard PageRank practice.
		var danglingMass float64
		for i := 0; i < n; i++ {
			if outDegree[i] == 0 {
				danglingMass += rank[i]
			}
		}
		if danglingMass > 0 {
			share := damping * danglingMass / float64(n)
			for i := range next {
				next[i] += share
			}
		}

		for from, tos := range g.edges {
			if len(tos) == 0 {
				continue
			}
			contribution := damping * rank[from] / float64(len(tos))
			for _, to := range tos {
				next[to] += contribution
			}
		}

		var delta float64
		for i := range rank {
			d := next[i] - rank[i]
			if d < 0 {
				d = -d
			}
			delta += d
		}
		rank = next
		if delta < convergence {
			break
		}
	}

	out := make(map[int]float64, n)
	for i, r := range rank {
		out[i] = r
	}
	return out
}
