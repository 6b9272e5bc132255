package grading

import (
	"math"
	"testing"
)

func TestScoreBoundaries(t *testing.T) {
	testCases := []struct {
		name          string
		elapsedMillis int64
		basePoints    float64
		isCorrect     bool
		timeLimit     int
		minTime       int
		expected      float64
	}{
		{"at min time full credit", 3000, 100, true, 10, 3, 100},
		{"below min time full credit", 1500, 100, true, 10, 3, 100},
		{"zero elapsed full credit", 0, 100, true, 10, 3, 100},
		{"at time limit decayed to zero", 10000, 100, true, 10, 3, 0},
		{"past time limit no credit", 11000, 100, true, 10, 3, 0},
		{"mid decay rounds to 2 decimals", 6500, 100, true, 10, 3, 32.65},
		{"one second into decay", 4000, 100, true, 10, 3, 73.47},
		{"sub-second truncates to floor", 3999, 100, true, 10, 3, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.elapsedMillis, tc.basePoints, tc.isCorrect, tc.timeLimit, tc.minTime)

			epsilon := 0.001
			if math.Abs(got-tc.expected) > epsilon {
				t.Errorf("Score() = %.4f, expected %.4f", got, tc.expected)
			}
		})
	}
}

func TestScoreIncorrectAlwaysZero(t *testing.T) {
	for _, elapsed := range []int64{0, 1000, 5000, 60000} {
		if got := Score(elapsed, 100, false, 10, 3); got != 0 {
			t.Errorf("Score(%d, incorrect) = %.2f, expected 0", elapsed, got)
		}
	}
}

func TestScoreEqualLimitAndMinTime(t *testing.T) {
	// timeLimit == minTime：衰减比率未定义，minTime 内满分，之后不得分
	if got := Score(5000, 50, true, 5, 5); got != 50 {
		t.Errorf("within minTime: got %.2f, expected 50", got)
	}
	if got := Score(6000, 50, true, 5, 5); got != 0 {
		t.Errorf("past minTime: got %.2f, expected 0", got)
	}
}
