// Package translate 把识别出的日文翻译成目标语言
//
// 支持的翻译器:
//   - google: 公共翻译接口，无需配置
//   - openai: 兼容 OpenAI 的对话接口，支持术语表
//
// 使用示例:
//
//	t := translate.New("openai", "zh-Hans", "openai.json")
//	text, err := t.Translate(ctx, "トレーナーさん")
package translate

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/zoeyai/umaocr/internal/logger"
)

// 翻译器名称
const (
	NameGoogle = "google"
	NameOpenAI = "openai"
)

// ErrEmptyResponse 接口没有返回译文
var ErrEmptyResponse = errors.New("翻译接口返回为空")

// Translator 翻译接口
//
// 输入只有空白时返回空字符串且不发出请求。
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// New 按名称创建翻译器
//
// 名称未知、配置文件缺失或无效时回退到 google。
func New(name, lang, configFile string) Translator {
	log := logger.Named("translate")
	google := NewGoogle(lang)

	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameOpenAI:
		data, err := os.ReadFile(configFile)
		if err != nil {
			log.Warn("读取 openai 配置失败，使用 google: %v", err)
			return google
		}
		t, err := NewOpenAIFromJSON(data, lang)
		if err != nil {
			log.Warn("openai 配置无效，使用 google: %v", err)
			return google
		}
		return t
	case NameGoogle, "":
		return google
	default:
		log.Warn("未知翻译器 %q，使用 google", name)
		return google
	}
}

// blank 只有空白
func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// languageName 语言代码对应的英文名称，用于提示词
func languageName(lang string) string {
	switch lang {
	case "zh-Hans", "zh-CN", "zh":
		return "Simplified Chinese"
	case "en":
		return "English"
	default:
		return lang
	}
}
