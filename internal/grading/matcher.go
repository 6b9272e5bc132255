package grading

import "strings"

// 单个答案字符串内部的备选分隔：竖线，或独立的单词 "or"
const altPipe = "|"

// SplitAlternatives 展开打包在一个字符串里的多个可接受答案，
// 例如 "color or colour"、"a|b"。没有分隔符时原样返回单元素切片。
func SplitAlternatives(answer string) []string {
	var parts []string
	switch {
	case strings.Contains(answer, altPipe):
		parts = strings.Split(answer, altPipe)
	case containsWordOr(answer):
		parts = splitWordOr(answer)
	default:
		return []string{strings.TrimSpace(answer)}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(answer)}
	}
	return out
}

// IsCorrectAnswer 判断学生答案是否与任一可接受答案一致。
// 双方都先小写并去除首尾空白，之后做精确比较，不做模糊匹配。
// 每个可接受答案先整体比较，数组里本身含 "or" 的元素按字面接受；
// 未命中时再展开打包在字符串内的备选。空输入视为答错，绝不 panic。
func IsCorrectAnswer(userAnswer string, accepted []string) bool {
	normalized := normalize(userAnswer)
	if normalized == "" {
		return false
	}

	for _, a := range accepted {
		if normalized == normalize(a) {
			return true
		}
		for _, alt := range SplitAlternatives(a) {
			if normalized == normalize(alt) {
				return true
			}
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsWordOr(s string) bool {
	for _, f := range strings.Fields(s) {
		if strings.EqualFold(f, "or") {
			return true
		}
	}
	return false
}

// splitWordOr 按独立的 "or" 单词切分，保留其余词序
func splitWordOr(s string) []string {
	fields := strings.Fields(s)
	var parts []string
	current := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.EqualFold(f, "or") {
			parts = append(parts, strings.Join(current, " "))
			current = current[:0]
			continue
		}
		current = append(current, f)
	}
	parts = append(parts, strings.Join(current, " "))
	return parts
}
