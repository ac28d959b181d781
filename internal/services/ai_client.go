package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/eduforge/eduforge-backend/internal/apperr"
	"github.com/eduforge/eduforge-backend/internal/logger"
	"github.com/eduforge/eduforge-backend/internal/repos"
	"github.com/eduforge/eduforge-backend/internal/types"
	"github.com/eduforge/eduforge-backend/internal/utils"
)

// AIClient wraps the chat-completions API for the three tutor call
// shapes the platform makes.
type AIClient interface {
	// Ask answers a free-form student question about a lesson.
	Ask(ctx context.Context, userID uuid.UUID, lessonContext, question string) (string, error)
	// GenerateTask produces a practice task and its reference answer
	// for a lesson.
	GenerateTask(ctx context.Context, userID uuid.UUID, lessonTitle, lessonDesc string) (task string, answer string, err error)
	// CompareAnswers judges whether a student answer matches the
	// reference answer in meaning.
	CompareAnswers(ctx context.Context, userID uuid.UUID, expected, given string) (bool, error)
}

type openAIClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	maxRetries int
	callLogs   repos.AICallLogRepo
	log        *logger.Logger
}

func NewAIClient(callLogs repos.AICallLogRepo, baseLog *logger.Logger) AIClient {
	clientLog := baseLog.With("component", "AIClient")
	timeout := utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 60, clientLog)
	return &openAIClient{
		httpClient: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		apiKey:     utils.GetEnv("OPENAI_API_KEY", "", clientLog),
		model:      utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", clientLog),
		baseURL:    utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com/v1", clientLog),
		maxRetries: utils.GetEnvAsInt("OPENAI_MAX_RETRIES", 3, clientLog),
		callLogs:   callLogs,
		log:        clientLog,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage json.RawMessage `json:"usage"`
}

func (c *openAIClient) Ask(ctx context.Context, userID uuid.UUID, lessonContext, question string) (string, error) {
	system := "You are a patient tutor on an online learning platform. " +
		"Answer the student's question about the lesson below. Be concise and concrete.\n\n" +
		"Lesson:\n" + lessonContext
	reply, err := c.chatCompletion(ctx, userID, "ask", system, question)
	if err != nil {
		return "", err
	}
	return reply, nil
}

func (c *openAIClient) GenerateTask(ctx context.Context, userID uuid.UUID, lessonTitle, lessonDesc string) (string, string, error) {
	system := "You generate practice tasks for an online learning platform. " +
		"Respond with a single JSON object of the form " +
		`{"task": "...", "answer": "..."} and nothing else.`
	prompt := fmt.Sprintf("Lesson: %s\n%s\nGenerate one task with its model answer.", lessonTitle, lessonDesc)

	reply, err := c.chatCompletion(ctx, userID, "generate_task", system, prompt)
	if err != nil {
		return "", "", err
	}

	var parsed struct {
		Task   string `json:"task"`
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(extractJSON(reply)), &parsed); err != nil {
		c.log.Warn("task generation returned malformed payload", "error", err.Error())
		return "", "", apperr.UpstreamJudge("model returned malformed task payload")
	}
	if parsed.Task == "" || parsed.Answer == "" {
		return "", "", apperr.UpstreamJudge("model returned incomplete task payload")
	}
	return parsed.Task, parsed.Answer, nil
}

func (c *openAIClient) CompareAnswers(ctx context.Context, userID uuid.UUID, expected, given string) (bool, error) {
	system := "You grade student answers on an online learning platform. " +
		"Compare the student's answer with the reference answer. " +
		`Respond with exactly one word: "true" if they match in meaning, "false" otherwise.`
	prompt := fmt.Sprintf("Reference answer: %s\nStudent answer: %s", expected, given)

	reply, err := c.chatCompletion(ctx, userID, "compare_answers", system, prompt)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(reply)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	c.log.Warn("answer comparison returned unexpected verdict", "reply", reply)
	return false, apperr.UpstreamJudge("model returned unparseable verdict")
}

func (c *openAIClient) chatCompletion(ctx context.Context, userID uuid.UUID, callType, system, user string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoffDelay(attempt, lastErr)):
			}
		}

		reply, usage, err := c.doRequest(ctx, payload)
		if err == nil {
			c.audit(ctx, userID, callType, user, reply, usage, nil)
			return reply, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
		c.log.Warn("chat completion retrying",
			"call_type", callType,
			"attempt", attempt+1,
			"error", err.Error())
	}

	c.audit(ctx, userID, callType, user, "", nil, lastErr)
	return "", apperr.Wrap(apperr.KindUpstreamJudge, lastErr)
}

// httpStatusError carries the response status for retry decisions and a
// Retry-After hint when the server sent one.
type httpStatusError struct {
	status     int
	body       string
	retryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.status, e.body)
}

func (c *openAIClient) doRequest(ctx context.Context, payload []byte) (string, json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", nil, err
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &httpStatusError{status: resp.StatusCode, body: truncate(string(body), 512)}
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, parseErr := strconv.Atoi(ra); parseErr == nil {
				statusErr.retryAfter = time.Duration(secs) * time.Second
			}
		}
		return "", nil, statusErr
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil, fmt.Errorf("response contained no choices")
	}
	return parsed.Choices[0].Message.Content, parsed.Usage, nil
}

func (c *openAIClient) audit(ctx context.Context, userID uuid.UUID, callType, prompt, response string, usage json.RawMessage, callErr error) {
	entry := &types.AICallLog{
		CallType: callType,
		Model:    c.model,
		Prompt:   truncate(prompt, 4096),
		Response: truncate(response, 4096),
		Success:  callErr == nil,
	}
	if userID != uuid.Nil {
		entry.UserID = &userID
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if len(usage) > 0 {
		entry.Usage = datatypes.JSON(usage)
	}
	if _, err := c.callLogs.Create(ctx, nil, entry); err != nil {
		c.log.Warn("could not persist ai call log", "error", err.Error())
	}
}

func isRetryable(err error) bool {
	if statusErr, ok := err.(*httpStatusError); ok {
		switch {
		case statusErr.status == http.StatusRequestTimeout:
			return true
		case statusErr.status == http.StatusTooManyRequests:
			return true
		case statusErr.status >= 500:
			return true
		}
		return false
	}
	// Transport-level failures (timeouts, resets) are worth retrying.
	return true
}

func backoffDelay(attempt int, lastErr error) time.Duration {
	if statusErr, ok := lastErr.(*httpStatusError); ok && statusErr.retryAfter > 0 {
		return statusErr.retryAfter
	}
	base := time.Duration(1<<uint(attempt-1)) * time.Second
	// jitter +-20%
	jitter := time.Duration(rand.Int63n(int64(base)/5+1)) - base/10
	return base + jitter
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// extractJSON pulls the outermost JSON object out of a reply that may be
// wrapped in markdown fences or prose.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
