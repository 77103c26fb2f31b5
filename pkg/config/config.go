// Package config 读写 ~/.umaocr/config.json
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zoeyai/umaocr/pkg/frame"
)

// 支持的译文语言
const (
	LanguageChinese = "zh-Hans"
	LanguageEnglish = "en"
	DefaultLanguage = LanguageEnglish
)

// AvailableLanguages 可选的译文语言
var AvailableLanguages = []string{LanguageChinese, LanguageEnglish}

// 游戏窗口默认值
var (
	DefaultWindowArea  = frame.Region{X: 1200, Y: 80, Width: 1106, Height: 1991}
	DefaultGameArea    = frame.Region{X: 14, Y: 57, Width: 1077, Height: 1921}
	DefaultWindowTitle = "umamusume"
)

// 窗口标题栏与边框
const (
	gameAreaTop    = 57
	gameAreaMargin = 60
)

// Config 应用配置
type Config struct {
	// Language 译文语言
	Language string `json:"language"`
	// WindowTitle 游戏窗口标题包含的文字
	WindowTitle string `json:"window_title"`
	// WindowArea 上次保存的窗口位置
	WindowArea frame.Region `json:"window_area"`
	// GameArea 游戏画面相对窗口左上角的区域
	GameArea frame.Region `json:"game_area"`

	// OCR 识别后端: paddle, grpc
	OCR string `json:"ocr"`
	// OCRConfig 后端配置文件
	OCRConfig string `json:"ocr_config,omitempty"`
	// Translator 翻译器: google, openai
	Translator string `json:"translator"`
	// TranslatorConfig 翻译器配置文件
	TranslatorConfig string `json:"translator_config,omitempty"`

	// PollIntervalMs 轮询间隔
	PollIntervalMs int `json:"poll_interval_ms"`
	// DebugDir 手动识别时保存截图的目录，为空时不保存
	DebugDir string `json:"debug_dir,omitempty"`
	// SkipSimilarFrames 画面感知哈希未变化时跳过
	SkipSimilarFrames bool `json:"skip_similar_frames"`
	// MaxFrameHashDistance 视为未变化的最大哈希距离
	MaxFrameHashDistance int `json:"max_frame_hash_distance"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file,omitempty"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Language:             DefaultLanguage,
		WindowTitle:          DefaultWindowTitle,
		WindowArea:           DefaultWindowArea,
		GameArea:             DefaultGameArea,
		OCR:                  "paddle",
		Translator:           "google",
		PollIntervalMs:       300,
		SkipSimilarFrames:    true,
		MaxFrameHashDistance: 0,
		LogLevel:             "INFO",
	}
}

// PollInterval 轮询间隔，非正数时为 300ms
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMs <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// normalize 修正不合法的取值
func (c *Config) normalize() {
	if !validLanguage(c.Language) {
		c.Language = DefaultLanguage
	}
	if c.WindowTitle == "" {
		c.WindowTitle = DefaultWindowTitle
	}
	if c.GameArea.Empty() {
		c.GameArea = DefaultGameArea
	}
}

// FitGameArea 记录窗口位置，游戏区域超出窗口时按画面比例重新计算
func (c *Config) FitGameArea(window frame.Region) {
	c.WindowArea = window
	if c.GameArea.Width <= window.Width && c.GameArea.Height <= window.Height {
		return
	}
	h := window.Height - gameAreaMargin
	w := h * frame.Width / frame.Height
	c.GameArea = frame.Region{
		X:      (window.Width - w) / 2,
		Y:      gameAreaTop,
		Width:  w,
		Height: h,
	}
}

func validLanguage(lang string) bool {
	for _, l := range AvailableLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return NewManagerWithDir(filepath.Join(homeDir, ".umaocr"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithFile 使用指定文件创建配置管理器
func NewManagerWithFile(configFile string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(configFile),
		configFile: configFile,
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置，文件不存在时返回默认配置
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}
	config.normalize()

	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}
