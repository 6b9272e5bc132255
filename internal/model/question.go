package model

import "encoding/json"

// 题目分类，沿用题库的四类
const (
	CategoryWord     = "word"
	CategoryPhrase   = "phrase"
	CategorySentence = "sentence"
	CategoryGrammar  = "grammar"
)

// TextbookAll 教材筛选的"全部"哨兵值
const TextbookAll = "all"

// Question 题库题目，测试期间只读
// swagger:model Question
type Question struct {
	BaseModel
	Category string `gorm:"size:20;index;not null" json:"category"` // word, phrase, sentence, grammar
	Prompt   string `gorm:"type:text;not null" json:"prompt"`
	// 正确答案。单个字符串，或 JSON 数组编码的多个可接受答案；
	// 单个字符串内部也可能用 " or " / "|" 打包多个备选（见 grading.SplitAlternatives）
	Answer   string `gorm:"type:text;not null" json:"answer"`
	Hint     string `gorm:"size:255" json:"hint,omitempty"`
	Textbook string `gorm:"size:100;index" json:"textbook,omitempty"`
	KeyPoint string `gorm:"size:100" json:"keyPoint"`
	Ability  string `gorm:"size:100" json:"ability"`
}

func (Question) TableName() string {
	return "questions"
}

// AnswerAlternatives 展开 Answer 字段：JSON 数组返回全部元素，否则返回单元素切片
func (q *Question) AnswerAlternatives() []string {
	var alts []string
	if err := json.Unmarshal([]byte(q.Answer), &alts); err == nil && len(alts) > 0 {
		return alts
	}
	return []string{q.Answer}
}
