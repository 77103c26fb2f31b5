package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zoeyai/umaocr/internal/logger"
)

// GoogleEndpoint 公共翻译接口
const GoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// Google 公共翻译接口，无需密钥
type Google struct {
	endpoint string
	lang     string
	client   *http.Client
	log      *logger.Logger
}

// NewGoogle 创建 google 翻译器
func NewGoogle(lang string) *Google {
	return &Google{
		endpoint: GoogleEndpoint,
		lang:     lang,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger.Named("google"),
	}
}

// SetEndpoint 替换接口地址
func (g *Google) SetEndpoint(endpoint string) {
	g.endpoint = endpoint
}

// Translate 翻译，每个译文片段单独成行
func (g *Google) Translate(ctx context.Context, text string) (string, error) {
	if blank(text) {
		return "", nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "ja")
	q.Set("tl", googleLanguage(g.lang))
	q.Set("dt", "t")
	q.Set("q", text)

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("创建请求失败: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		g.log.LogEvent("translate", false, time.Since(start), err.Error())
		return "", fmt.Errorf("google 翻译请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.log.LogEvent("translate", false, time.Since(start), resp.Status)
		return "", fmt.Errorf("google 翻译失败: HTTP %d", resp.StatusCode)
	}

	out, err := parseGoogle(body)
	if err != nil {
		return "", err
	}
	g.log.LogEvent("translate", true, time.Since(start), fmt.Sprintf("%d 字", len([]rune(out))))
	return out, nil
}

// parseGoogle 取出 [[["译文","原文",...],...],...] 中每段的译文
func parseGoogle(body []byte) (string, error) {
	var root []json.RawMessage
	if err := json.Unmarshal(body, &root); err != nil {
		return "", fmt.Errorf("解析响应失败: %w", err)
	}
	if len(root) == 0 {
		return "", ErrEmptyResponse
	}

	var segments [][]interface{}
	if err := json.Unmarshal(root[0], &segments); err != nil {
		return "", fmt.Errorf("解析译文片段失败: %w", err)
	}

	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		s, ok := seg[0].(string)
		if !ok {
			continue
		}
		lines = append(lines, strings.TrimSpace(s))
	}
	if len(lines) == 0 {
		return "", ErrEmptyResponse
	}
	return strings.Join(lines, "\n"), nil
}

// googleLanguage 公共接口使用的语言代码
func googleLanguage(lang string) string {
	if lang == "zh-Hans" {
		return "zh-CN"
	}
	return lang
}
