package dataset

// BuildStatistics computes single and pairwise frequency statistics over
// rows. Null sentinels are excluded from counts: a null never contributes
// to a value universe, and a value pair is counted only when both sides
// are non-null. An attribute pair never observed together therefore stays
// absent from the Pair map, which consumers rely on to tell "no data for
// this pair" apart from "observed but pruned".
func BuildStatistics(rows []Row, attrs []string) Statistics {
	stats := Statistics{
		Total:  len(rows),
		Single: make(map[string]map[string]int, len(attrs)),
		Pair:   make(map[AttrPair]map[string]map[string]int),
	}
	for _, attr := range attrs {
		stats.Single[attr] = make(map[string]int)
	}
	for _, row := range rows {
		for _, attr := range attrs {
			v := row.Value(attr)
			if v == NullValue {
				continue
			}
			stats.Single[attr][v]++
		}
		for _, cond := range attrs {
			cv := row.Value(cond)
			if cv == NullValue {
				continue
			}
			for _, target := range attrs {
				if target == cond {
					continue
				}
				tv := row.Value(target)
				if tv == NullValue {
					continue
				}
				pair := AttrPair{Cond: cond, Target: target}
				byCond := stats.Pair[pair]
				if byCond == nil {
					byCond = make(map[string]map[string]int)
					stats.Pair[pair] = byCond
				}
				byTarget := byCond[cv]
				if byTarget == nil {
					byTarget = make(map[string]int)
					byCond[cv] = byTarget
				}
				byTarget[tv]++
			}
		}
	}
	return stats
}
