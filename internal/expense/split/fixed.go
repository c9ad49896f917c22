package split

// applyFixed validates and records FIXED shares verbatim. Returns the sum of
// all fixed shares so the remaining strategies work against what is left of
// the expense total.
func applyFixed(total int64, requests []Request, amounts []int64) (int64, error) {
	var sum int64
	for i, req := range requests {
		if req.Type != SplitTypeFixed {
			continue
		}
		if req.Amount == nil {
			return 0, invalidf("fixed amount required for user %d", req.UserID)
		}
		if *req.Amount < 0 {
			return 0, invalidf("fixed amount for user %d is negative", req.UserID)
		}
		amounts[i] = *req.Amount
		sum += *req.Amount
	}

	if sum > total {
		return 0, invalidf("fixed amounts sum to %d, exceeding expense total %d", sum, total)
	}

	return sum, nil
}
