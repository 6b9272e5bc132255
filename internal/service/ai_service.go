package service

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"english_lt_backend/internal/config"
	"english_lt_backend/internal/model"
)

type AIService struct {
	config config.AIConfig
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{config: cfg}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
		Delta   AIChatMessage `json:"delta"` // 流式响应
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const tutorSystemPrompt = "你是一位经验丰富的少儿英语辅导老师。" +
	"请根据学生的测试错题，用简洁友善的中文分析出错原因，指出涉及的知识点，" +
	"并给出两到三条有针对性的练习建议。不要逐题重复题干，直接给出归纳后的分析。"

// buildMistakePrompt 把错题明细拼成分析用的提示词
func buildMistakePrompt(student *model.Student, questions []model.Question, details []model.TestDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "学生：%s（%s %s）\n本次测试错题如下：\n", student.Name, student.Grade, student.Class)

	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	n := 0
	for _, d := range details {
		if d.IsCorrect {
			continue
		}
		q, ok := byID[d.QuestionID]
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. [%s] 题目：%s 正确答案：%s 学生作答：%s\n",
			n, q.Category, q.Prompt, q.Answer, d.UserAnswer)
		if q.KeyPoint != "" {
			fmt.Fprintf(&b, "   考查知识点：%s\n", q.KeyPoint)
		}
	}

	if n == 0 {
		b.WriteString("（本次全部答对，请给出表扬和进阶学习建议）\n")
	}
	return b.String()
}

// AnalyzeMistakesStream 流式生成错题分析
func (s *AIService) AnalyzeMistakesStream(student *model.Student, questions []model.Question, details []model.TestDetail) (<-chan string, <-chan error) {
	prompt := buildMistakePrompt(student, questions, details)
	return s.chatStream(prompt)
}

func (s *AIService) chatStream(prompt string) (<-chan string, <-chan error) {
	out := make(chan string)
	errChan := make(chan error, 1)

	messages := []AIChatMessage{
		{Role: "system", Content: tutorSystemPrompt},
		{Role: "user", Content: prompt},
	}

	reqBody := map[string]interface{}{
		"model":    s.config.Model,
		"messages": messages,
		"stream":   true,
	}

	jsonData, _ := json.Marshal(reqBody)

	go func() {
		defer close(out)
		defer close(errChan)

		req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
		if err != nil {
			errChan <- err
			return
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			errChan <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			errChan <- fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
			return
		}

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err != io.EOF {
					errChan <- err
				}
				break
			}

			line = strings.TrimSpace(line)
			if line == "" || !strings.HasPrefix(line, "data: ") {
				continue
			}

			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				break
			}

			var streamResp ChatCompletionResponse
			if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
				continue
			}

			if len(streamResp.Choices) > 0 {
				content := streamResp.Choices[0].Delta.Content
				if content != "" {
					out <- content
				}
			}
		}
	}()

	return out, errChan
}

// AnalyzeMistakes 非流式版本，移动端轮询用
func (s *AIService) AnalyzeMistakes(student *model.Student, questions []model.Question, details []model.TestDetail) (string, error) {
	prompt := buildMistakePrompt(student, questions, details)

	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: tutorSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}
