package split

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int64) *int64       { return &i }

func equalReq(userID int64) Request {
	return Request{UserID: userID, Type: SplitTypeEqual}
}

func percentReq(userID int64, pct float64) Request {
	return Request{UserID: userID, Type: SplitTypePercentage, Percentage: floatPtr(pct)}
}

func fixedReq(userID int64, amount int64) Request {
	return Request{UserID: userID, Type: SplitTypeFixed, Amount: intPtr(amount)}
}

func amountsOf(resolved []Resolved) []int64 {
	out := make([]int64, len(resolved))
	for i, r := range resolved {
		out[i] = r.Amount
	}
	return out
}

func sumOf(resolved []Resolved) int64 {
	var sum int64
	for _, r := range resolved {
		sum += r.Amount
	}
	return sum
}

func TestResolveEqual(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		requests []Request
		want     []int64
	}{
		{
			name:     "divides evenly",
			total:    300,
			requests: []Request{equalReq(1), equalReq(2), equalReq(3)},
			want:     []int64{100, 100, 100},
		},
		{
			name:     "remainder goes to earliest participants",
			total:    100,
			requests: []Request{equalReq(1), equalReq(2), equalReq(3)},
			want:     []int64{34, 33, 33},
		},
		{
			name:     "two units of remainder",
			total:    101,
			requests: []Request{equalReq(1), equalReq(2), equalReq(3)},
			want:     []int64{34, 34, 33},
		},
		{
			name:     "single participant takes all",
			total:    999,
			requests: []Request{equalReq(7)},
			want:     []int64{999},
		},
		{
			name:     "total smaller than participant count",
			total:    2,
			requests: []Request{equalReq(1), equalReq(2), equalReq(3)},
			want:     []int64{1, 1, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := Resolve(tt.total, 1, tt.requests, Policy{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, amountsOf(resolved))
			assert.Equal(t, tt.total, sumOf(resolved))
		})
	}
}

func TestResolvePercentage(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		requests []Request
		want     []int64
	}{
		{
			name:     "clean percentages",
			total:    100,
			requests: []Request{percentReq(1, 33), percentReq(2, 33), percentReq(3, 34)},
			want:     []int64{33, 33, 34},
		},
		{
			name:     "rounding remainder folded into largest share",
			total:    100,
			requests: []Request{percentReq(1, 33.33), percentReq(2, 33.33), percentReq(3, 33.34)},
			// every share rounds to 33; the missing unit goes to the
			// largest share, ties broken by input order
			want: []int64{34, 33, 33},
		},
		{
			name:     "uneven weights",
			total:    1000,
			requests: []Request{percentReq(1, 50), percentReq(2, 30), percentReq(3, 20)},
			want:     []int64{500, 300, 200},
		},
		{
			name:     "zero percent participant",
			total:    200,
			requests: []Request{percentReq(1, 100), percentReq(2, 0)},
			want:     []int64{200, 0},
		},
		{
			name:     "small total with half-up rounding",
			total:    3,
			requests: []Request{percentReq(1, 50), percentReq(2, 50)},
			// both round 1.5 up to 2, correction pulls the largest
			// (first) back to 1
			want: []int64{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := Resolve(tt.total, 1, tt.requests, Policy{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, amountsOf(resolved))
			assert.Equal(t, tt.total, sumOf(resolved))
		})
	}
}

func TestResolveFixed(t *testing.T) {
	t.Run("amounts summing to total are accepted unchanged", func(t *testing.T) {
		resolved, err := Resolve(500, 1, []Request{fixedReq(1, 200), fixedReq(2, 300)}, Policy{})
		require.NoError(t, err)
		assert.Equal(t, []int64{200, 300}, amountsOf(resolved))
	})

	t.Run("amounts exceeding total are rejected", func(t *testing.T) {
		_, err := Resolve(500, 1, []Request{fixedReq(1, 400), fixedReq(2, 300)}, Policy{})
		assert.ErrorIs(t, err, ErrInvalidSplitData)
	})

	t.Run("amounts under total with no one to absorb the rest are rejected", func(t *testing.T) {
		_, err := Resolve(500, 1, []Request{fixedReq(1, 100), fixedReq(2, 100)}, Policy{})
		assert.ErrorIs(t, err, ErrInvalidSplitData)
	})

	t.Run("missing amount is rejected", func(t *testing.T) {
		_, err := Resolve(500, 1, []Request{{UserID: 1, Type: SplitTypeFixed}}, Policy{})
		assert.ErrorIs(t, err, ErrInvalidSplitData)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		_, err := Resolve(500, 1, []Request{fixedReq(1, -10), fixedReq(2, 510)}, Policy{})
		assert.ErrorIs(t, err, ErrInvalidSplitData)
	})
}

func TestResolveMixedStrategies(t *testing.T) {
	t.Run("fixed plus equal remainder", func(t *testing.T) {
		resolved, err := Resolve(100, 1, []Request{fixedReq(1, 40), equalReq(2), equalReq(3)}, Policy{})
		require.NoError(t, err)
		assert.Equal(t, []int64{40, 30, 30}, amountsOf(resolved))
	})

	t.Run("fixed plus percentage of remainder", func(t *testing.T) {
		resolved, err := Resolve(1000, 1, []Request{fixedReq(1, 400), percentReq(2, 50), percentReq(3, 50)}, Policy{})
		require.NoError(t, err)
		assert.Equal(t, []int64{400, 300, 300}, amountsOf(resolved))
	})

	t.Run("all three strategies", func(t *testing.T) {
		resolved, err := Resolve(1000, 1, []Request{fixedReq(1, 200), percentReq(2, 25), equalReq(3), equalReq(4)}, Policy{})
		require.NoError(t, err)
		// 200 fixed, 25% of the remaining 800 = 200, equal entries share 600
		assert.Equal(t, []int64{200, 200, 300, 300}, amountsOf(resolved))
	})

	t.Run("percentages over the remainder with equal entries present leave the slack to the pool", func(t *testing.T) {
		resolved, err := Resolve(100, 1, []Request{percentReq(1, 60), equalReq(2), equalReq(3)}, Policy{})
		require.NoError(t, err)
		assert.Equal(t, []int64{60, 20, 20}, amountsOf(resolved))
	})
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		requests []Request
		wantErr  error
	}{
		{
			name:     "zero total",
			total:    0,
			requests: []Request{equalReq(1)},
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "negative total",
			total:    -100,
			requests: []Request{equalReq(1)},
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "no participants",
			total:    100,
			requests: nil,
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "duplicate participant",
			total:    100,
			requests: []Request{equalReq(1), equalReq(1)},
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "unknown split type",
			total:    100,
			requests: []Request{{UserID: 1, Type: "RANDOM"}},
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "missing percentage",
			total:    100,
			requests: []Request{{UserID: 1, Type: SplitTypePercentage}},
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "percentage above 100",
			total:    100,
			requests: []Request{percentReq(1, 120)},
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "negative percentage",
			total:    100,
			requests: []Request{percentReq(1, -5), percentReq(2, 105)},
			wantErr:  ErrInvalidSplitData,
		},
		{
			name:     "percentages not covering 100 with no equal entries",
			total:    100,
			requests: []Request{percentReq(1, 40), percentReq(2, 40)},
			wantErr:  ErrInvalidSplitData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.total, 1, tt.requests, Policy{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestResolvePayerPolicy(t *testing.T) {
	requests := []Request{equalReq(2), equalReq(3)}

	t.Run("payer absent is allowed by default", func(t *testing.T) {
		resolved, err := Resolve(100, 1, requests, Policy{})
		require.NoError(t, err)
		for _, r := range resolved {
			assert.False(t, r.IsPaid)
		}
	})

	t.Run("payer absent is rejected when required", func(t *testing.T) {
		_, err := Resolve(100, 1, requests, Policy{RequirePayerInSplit: true})
		assert.ErrorIs(t, err, ErrPayerNotInSplit)
	})

	t.Run("payer's own share starts settled", func(t *testing.T) {
		resolved, err := Resolve(100, 2, requests, Policy{RequirePayerInSplit: true})
		require.NoError(t, err)
		assert.True(t, resolved[0].IsPaid)
		assert.False(t, resolved[1].IsPaid)
	})
}

// TestResolveSumInvariant sweeps totals and participant counts across all
// three strategies to show the mismatch guard is unreachable: every valid
// request resolves to shares summing exactly to the total.
func TestResolveSumInvariant(t *testing.T) {
	percentages := [][]float64{
		{100},
		{50, 50},
		{33.33, 33.33, 33.34},
		{10, 20, 30, 40},
		{12.5, 12.5, 25, 50},
		{1, 99},
	}

	for total := int64(1); total <= 500; total++ {
		for count := 1; count <= 7; count++ {
			requests := make([]Request, count)
			for i := range requests {
				requests[i] = equalReq(int64(i + 1))
			}
			resolved, err := Resolve(total, 1, requests, Policy{})
			require.NoError(t, err)
			require.Equal(t, total, sumOf(resolved), "EQUAL total=%d count=%d", total, count)
		}

		for pi, pcts := range percentages {
			requests := make([]Request, len(pcts))
			for i, pct := range pcts {
				requests[i] = percentReq(int64(i+1), pct)
			}
			resolved, err := Resolve(total, 1, requests, Policy{})
			require.NoError(t, err)
			require.Equal(t, total, sumOf(resolved), "PERCENTAGE total=%d set=%d", total, pi)
		}
	}

	// Mixed requests: one fixed share of every possible size plus equal rest.
	for total := int64(10); total <= 200; total += 7 {
		for fixed := int64(0); fixed <= total; fixed += 3 {
			requests := []Request{fixedReq(1, fixed), equalReq(2), equalReq(3)}
			resolved, err := Resolve(total, 1, requests, Policy{})
			require.NoError(t, err)
			require.Equal(t, total, sumOf(resolved), "MIXED total=%d fixed=%d", total, fixed)
		}
	}
}

// TestResolveDeterministic re-runs the same request and expects identical output.
func TestResolveDeterministic(t *testing.T) {
	requests := []Request{
		fixedReq(4, 123),
		percentReq(5, 40),
		equalReq(6),
		equalReq(7),
	}

	first, err := Resolve(1000, 5, requests, Policy{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Resolve(1000, 5, requests, Policy{})
		require.NoError(t, err)
		assert.Equal(t, first, again, fmt.Sprintf("run %d diverged", i))
	}
}
