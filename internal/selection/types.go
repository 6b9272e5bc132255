package selection

import "english_lt_backend/internal/model"

// TypeConfig 单个题型在一场测试中的抽题参数，测试开始后冻结
type TypeConfig struct {
	Category         string  `json:"category" binding:"required"`
	Count            int     `json:"count"`
	PointValue       float64 `json:"pointValue"`
	TimeLimitSeconds int     `json:"timeLimitSeconds"`
	MinTimeSeconds   int     `json:"minTimeSeconds"`
}

// SessionQuestion 抽中的题目，抽题时把题型参数盖印到实例上，之后不再变更
type SessionQuestion struct {
	model.Question
	PointValue       float64 `json:"pointValue"`
	TimeLimitSeconds int     `json:"timeLimitSeconds"`
	MinTimeSeconds   int     `json:"minTimeSeconds"`
}

// Shortfall 某题型可用题目少于请求数量，非致命，调用方据此提示用户
type Shortfall struct {
	Category  string `json:"category"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Result 一次抽题的产出
type Result struct {
	Questions  []SessionQuestion `json:"questions"`
	Shortfalls []Shortfall       `json:"shortfalls,omitempty"`
}

// TotalRequested 各题型请求数量之和
func TotalRequested(configs []TypeConfig) int {
	total := 0
	for _, c := range configs {
		if c.Count > 0 {
			total += c.Count
		}
	}
	return total
}
