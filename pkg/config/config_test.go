package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zoeyai/umaocr/pkg/frame"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Language != "en" {
		t.Errorf("默认语言应为 en, 实际为 %s", config.Language)
	}
	if config.WindowTitle != "umamusume" {
		t.Errorf("默认窗口标题错误: %s", config.WindowTitle)
	}
	if config.GameArea != frame.NewRegion(14, 57, 1077, 1921) {
		t.Errorf("默认游戏区域错误: %s", config.GameArea)
	}
	if config.OCR != "paddle" || config.Translator != "google" {
		t.Errorf("默认后端错误: %s / %s", config.OCR, config.Translator)
	}
	if config.PollInterval() != 300*time.Millisecond {
		t.Errorf("默认轮询间隔错误: %v", config.PollInterval())
	}

	t.Logf("默认配置: %+v", config)
}

func TestManagerSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if manager.Exists() {
		t.Error("初始时配置文件不应存在")
	}

	config := DefaultConfig()
	config.Language = "zh-Hans"
	config.Translator = "openai"
	config.TranslatorConfig = "/tmp/openai.json"
	config.WindowArea = frame.NewRegion(10, 20, 800, 1400)
	config.PollIntervalMs = 500

	if err := manager.Save(config); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if !manager.Exists() {
		t.Error("保存后配置文件应存在")
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if *loaded != *config {
		t.Errorf("配置不匹配:\n期望 %+v\n实际 %+v", config, loaded)
	}

	t.Logf("加载的配置: %+v", loaded)
}

func TestManagerLoadInvalidLanguage(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)
	os.WriteFile(manager.GetConfigFile(), []byte(`{"language":"fr","ocr":"grpc"}`), 0600)

	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if config.Language != "en" {
		t.Errorf("不支持的语言应回退为 en, 实际为 %s", config.Language)
	}
	if config.OCR != "grpc" {
		t.Errorf("OCR 应为 grpc, 实际为 %s", config.OCR)
	}
	if config.GameArea != DefaultGameArea {
		t.Error("未出现的字段应保留默认值")
	}
}

func TestManagerClear(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if err := manager.Save(DefaultConfig()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}
	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}
	if err := manager.Clear(); err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestManagerLoadNonExistent(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}
	if config.WindowTitle != DefaultWindowTitle {
		t.Errorf("应返回默认配置")
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	configFile := filepath.Join(tempDir, "config.json")
	if err := os.WriteFile(configFile, []byte("not valid json"), 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	config, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}
	if config == nil || config.Language != DefaultLanguage {
		t.Error("即使出错也应返回默认配置")
	}

	t.Logf("加载损坏配置的错误: %v", err)
}

func TestManagerPaths(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if manager.GetConfigDir() != tempDir {
		t.Errorf("GetConfigDir 应为 %s", tempDir)
	}
	if manager.GetConfigFile() != filepath.Join(tempDir, "config.json") {
		t.Errorf("GetConfigFile 错误: %s", manager.GetConfigFile())
	}

	file := filepath.Join(tempDir, "custom", "umaocr.json")
	custom := NewManagerWithFile(file)
	if custom.GetConfigFile() != file || custom.GetConfigDir() != filepath.Dir(file) {
		t.Errorf("指定文件的路径错误: %s", custom.GetConfigFile())
	}
	if err := custom.Save(DefaultConfig()); err != nil {
		t.Fatalf("应自动创建目录: %v", err)
	}
}

func TestDefaultManager(t *testing.T) {
	manager := GetDefaultManager()
	if manager == nil {
		t.Fatal("GetDefaultManager 返回 nil")
	}

	homeDir, _ := os.UserHomeDir()
	expectedDir := filepath.Join(homeDir, ".umaocr")
	if manager.GetConfigDir() != expectedDir {
		t.Errorf("默认配置目录应为 %s, 实际为 %s", expectedDir, manager.GetConfigDir())
	}
}

func TestConfigFilePermissions(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())
	if err := manager.Save(DefaultConfig()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	info, err := os.Stat(manager.GetConfigFile())
	if err != nil {
		t.Fatalf("获取文件信息失败: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Logf("警告: 配置文件权限为 %o", perm)
	}
}

func TestFitGameArea(t *testing.T) {
	config := DefaultConfig()

	// 窗口足够大时只记录窗口
	window := frame.NewRegion(0, 0, 1200, 2000)
	config.FitGameArea(window)
	if config.WindowArea != window || config.GameArea != DefaultGameArea {
		t.Errorf("游戏区域不应变化: %s", config.GameArea)
	}

	// 窗口变小后按比例重算
	small := frame.NewRegion(100, 50, 600, 1060)
	config.FitGameArea(small)
	want := frame.NewRegion(19, 57, 562, 1000)
	if config.GameArea != want {
		t.Errorf("游戏区域错误: %s, 期望 %s", config.GameArea, want)
	}
}

// BenchmarkSaveLoad 基准测试
func BenchmarkSaveLoad(b *testing.B) {
	manager := NewManagerWithDir(b.TempDir())
	config := DefaultConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		manager.Save(config)
		manager.Load()
	}
}
