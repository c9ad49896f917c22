package split

import "math"

// percentageTolerance absorbs float representation error when checking that
// percentages sum to 100.
const percentageTolerance = 0.01

// applyPercentage computes PERCENTAGE shares against the remainder left after
// FIXED entries, using round-half-up. When the percentage entries are the last
// strategy in the request (exact == true, no EQUAL entries), they must cover
// the full 100% and the rounding remainder is folded into the largest single
// share, ties broken by input order. With EQUAL entries present, any rounding
// slack simply flows into the equal pool.
func applyPercentage(remainder int64, requests []Request, amounts []int64, exact bool) (int64, error) {
	var totalPercent float64
	count := 0
	for _, req := range requests {
		if req.Type != SplitTypePercentage {
			continue
		}
		if req.Percentage == nil {
			return 0, invalidf("percentage required for user %d", req.UserID)
		}
		if *req.Percentage < 0 || *req.Percentage > 100 {
			return 0, invalidf("percentage for user %d must be between 0 and 100", req.UserID)
		}
		totalPercent += *req.Percentage
		count++
	}

	if count == 0 {
		return 0, nil
	}

	if exact && math.Abs(totalPercent-100) > percentageTolerance {
		return 0, invalidf("percentages sum to %.2f, must sum to 100", totalPercent)
	}
	if !exact && totalPercent > 100+percentageTolerance {
		return 0, invalidf("percentages sum to %.2f, exceeding 100", totalPercent)
	}

	var sum int64
	largest := -1
	for i, req := range requests {
		if req.Type != SplitTypePercentage {
			continue
		}
		amounts[i] = roundHalfUp(remainder, *req.Percentage)
		sum += amounts[i]
		if largest == -1 || amounts[i] > amounts[largest] {
			largest = i
		}
	}

	if exact {
		// Force the exact sum by adjusting the largest share.
		diff := remainder - sum
		if diff != 0 {
			if amounts[largest]+diff < 0 {
				return 0, invalidf("rounding correction drives user %d's share negative", requests[largest].UserID)
			}
			amounts[largest] += diff
			sum = remainder
		}
	}

	return sum, nil
}

// roundHalfUp computes amount * percent / 100 rounded half away from zero
// toward positive infinity, in minor units.
func roundHalfUp(amount int64, percent float64) int64 {
	return int64(math.Floor(float64(amount)*percent/100 + 0.5))
}
