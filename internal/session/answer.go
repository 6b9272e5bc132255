package session

type answerKind int

const (
	kindText answerKind = iota // 输入模式：自由文本
	kindFlip                   // 翻卡模式：自报 知道/不知道
)

// AnswerValue 按测试模式区分的答案变体，各模式只处理自己的变体
type AnswerValue struct {
	kind answerKind
	text string
	knew bool
}

// TextAnswer 输入模式的文本答案
func TextAnswer(text string) AnswerValue {
	return AnswerValue{kind: kindText, text: text}
}

// FlipAnswer 翻卡模式的自评结果
func FlipAnswer(knew bool) AnswerValue {
	return AnswerValue{kind: kindFlip, knew: knew}
}

// Answer 单题作答记录，创建后不再修改（重答是整体替换）
type Answer struct {
	Value         AnswerValue
	ElapsedMillis int64
	Score         float64
}
