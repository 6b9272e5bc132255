// Package grading 实现计分函数和答案比对，纯函数，无副作用
package grading

import "math"

// Score 按作答耗时衰减计分。
// minTime 秒内答对得满分，超过 timeLimit 秒不得分，
// 中间区间按 (1-ratio)^2 二次衰减，结果保留两位小数。
func Score(elapsedMillis int64, basePoints float64, isCorrect bool, timeLimitSeconds, minTimeSeconds int) float64 {
	if !isCorrect {
		return 0
	}

	secondsPassed := elapsedMillis / 1000

	if secondsPassed > int64(timeLimitSeconds) {
		return 0
	}
	if secondsPassed <= int64(minTimeSeconds) {
		return basePoints
	}

	// timeLimit == minTime 时衰减区间不存在：超过 minTime 即不得分
	if timeLimitSeconds == minTimeSeconds {
		return 0
	}

	ratio := float64(secondsPassed-int64(minTimeSeconds)) / float64(timeLimitSeconds-minTimeSeconds)
	percentage := math.Pow(1-ratio, 2)

	return math.Round(basePoints*percentage*100) / 100
}
