package split

// applyEqual divides pool evenly among EQUAL participants using integer
// division, handing the remainder out one minor unit at a time in input
// order. Earlier-listed participants absorb the extra unit, which keeps the
// distribution reproducible regardless of map iteration or hashing.
func applyEqual(pool int64, requests []Request, amounts []int64) error {
	var indexes []int
	for i, req := range requests {
		if req.Type == SplitTypeEqual {
			indexes = append(indexes, i)
		}
	}

	if len(indexes) == 0 {
		return nil
	}

	if pool < 0 {
		return invalidf("fixed and percentage shares exceed the expense total, nothing left to divide equally")
	}

	share := pool / int64(len(indexes))
	extra := pool % int64(len(indexes))
	for j, i := range indexes {
		amounts[i] = share
		if int64(j) < extra {
			amounts[i]++
		}
	}

	return nil
}
