package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/zoeyai/umaocr/internal/logger"
)

// OpenAIConfig openai 翻译器配置文件
type OpenAIConfig struct {
	APIKey      string  `json:"api_key"`
	BaseURL     string  `json:"base_url,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
	TimeoutSec  int     `json:"timeout_sec,omitempty"`
	GlossaryDir string  `json:"glossary_dir,omitempty"`
}

// 默认值
const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAITimeout = 30 * time.Second
)

// OpenAI 通过对话接口翻译
type OpenAI struct {
	client   *openai.Client
	config   OpenAIConfig
	lang     string
	glossary Glossary
	log      *logger.Logger
}

// NewOpenAIFromJSON 解析配置并创建翻译器
func NewOpenAIFromJSON(data []byte, lang string) (*OpenAI, error) {
	var cfg OpenAIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析 openai 配置失败: %w", err)
	}
	return NewOpenAI(cfg, lang)
}

// NewOpenAI 创建翻译器，同时加载目标语言的术语表
func NewOpenAI(cfg OpenAIConfig, lang string) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("缺少 api_key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.GlossaryDir == "" {
		cfg.GlossaryDir = DefaultGlossaryDir
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	t := &OpenAI{
		client: openai.NewClientWithConfig(config),
		config: cfg,
		lang:   lang,
		log:    logger.Named("openai"),
	}

	glossary, err := LoadGlossary(cfg.GlossaryDir, lang)
	if err != nil {
		t.log.Warn("%v，不使用术语表", err)
		glossary = Glossary{}
	}
	t.glossary = glossary
	return t, nil
}

// Translate 翻译，保留原文的换行
func (t *OpenAI) Translate(ctx context.Context, text string) (string, error) {
	if blank(text) {
		return "", nil
	}

	timeout := defaultOpenAITimeout
	if t.config.TimeoutSec > 0 {
		timeout = time.Duration(t.config.TimeoutSec) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: t.systemPrompt(text)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: t.config.Temperature,
	})
	if err != nil {
		t.log.LogEvent("translate", false, time.Since(start), err.Error())
		return "", fmt.Errorf("openai 翻译失败: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	t.log.LogEvent("translate", true, time.Since(start), fmt.Sprintf("%s %d tokens", t.config.Model, resp.Usage.TotalTokens))
	return out, nil
}

// systemPrompt 翻译要求与本段涉及的术语
func (t *OpenAI) systemPrompt(text string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate the following Japanese text from the game Umamusume into %s. ", languageName(t.lang))
	sb.WriteString("Keep the line breaks. Reply with the translation only.")
	if hints := t.glossary.Hints(text); hints != "" {
		sb.WriteString("\nUse these fixed translations:\n")
		sb.WriteString(hints)
	}
	return sb.String()
}
