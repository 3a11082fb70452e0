package domain

import (
	"sort"

	"domgen/internal/dataset"
)

// Index is the pruned co-occurrence lookup: for every observed attribute
// pair, each conditioning value maps to the target values whose joint
// count passed the top-K threshold. Built once at setup, read-only after.
type Index struct {
	pairs map[dataset.AttrPair]CandidateTable
}

// CandidateTable maps a conditioning value to its surviving candidates,
// ordered by descending joint count then value. A conditioning value that
// lost all candidates to pruning keeps its key with an empty list; that is
// a legitimate "nothing passes threshold" state, distinct from a pair that
// was never observed at all.
type CandidateTable map[string][]string

// BuildIndex prunes raw pairwise statistics down to the candidates whose
// joint count strictly exceeds topK * count(cond value). Every pair
// present in the raw statistics is retained, even when pruning leaves it
// empty: consumers must be able to tell "observed but pruned" apart from
// "no data for this pair".
func BuildIndex(stats dataset.Statistics, topK float64) *Index {
	ix := &Index{pairs: make(map[dataset.AttrPair]CandidateTable, len(stats.Pair))}
	for pair, byCond := range stats.Pair {
		table := make(CandidateTable, len(byCond))
		for condVal, counts := range byCond {
			tau := topK * float64(stats.Single[pair.Cond][condVal])
			kept := make([]valueCount, 0, len(counts))
			for target, count := range counts {
				if float64(count) > tau {
					kept = append(kept, valueCount{value: target, count: count})
				}
			}
			sort.Slice(kept, func(i, j int) bool {
				if kept[i].count != kept[j].count {
					return kept[i].count > kept[j].count
				}
				return kept[i].value < kept[j].value
			})
			candidates := make([]string, 0, len(kept))
			for _, vc := range kept {
				candidates = append(candidates, vc.value)
			}
			table[condVal] = candidates
		}
		ix.pairs[pair] = table
	}
	return ix
}

type valueCount struct {
	value string
	count int
}

// Lookup returns the candidate table for (cond, target) and whether the
// pair was observed at all. observed=false means the two attributes never
// had a joint non-null occurrence.
func (ix *Index) Lookup(cond, target string) (CandidateTable, bool) {
	table, ok := ix.pairs[dataset.AttrPair{Cond: cond, Target: target}]
	return table, ok
}

// Pairs reports the number of observed attribute pairs.
func (ix *Index) Pairs() int {
	return len(ix.pairs)
}
