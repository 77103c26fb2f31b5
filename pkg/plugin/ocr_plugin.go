// Package plugin 管理可选插件（OCR 模型与运行库）
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/zoeyai/umaocr/internal/logger"
	"github.com/zoeyai/umaocr/pkg/vision/ocr"
)

// HFRepoBase HuggingFace 模型仓库地址
const HFRepoBase = "https://huggingface.co/getcharzp/go-ocr/resolve/main"

// ErrDownloading 已有下载在进行
var ErrDownloading = errors.New("正在下载中")

// OCRPlugin OCR 插件管理器
type OCRPlugin struct {
	baseDir    string
	repoBase   string
	client     *http.Client
	mu         sync.RWMutex
	installing bool
	progress   float64
	onProgress func(float64)
	log        *logger.Logger
}

// OCRPluginStatus OCR 插件状态
type OCRPluginStatus struct {
	Installed   bool       `json:"installed"`
	Downloading bool       `json:"downloading"`
	Progress    float64    `json:"progress"` // 0-100
	Config      ocr.Config `json:"config"`
}

// downloadFile 需要下载的文件
type downloadFile struct {
	name     string
	url      string
	destPath string
	size     int64 // 预估大小（字节）
}

// DefaultDir 默认安装目录 ~/.umaocr/plugins/ocr
func DefaultDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".umaocr", "plugins", "ocr")
}

// NewOCRPlugin 创建 OCR 插件管理器，baseDir 为空时使用 DefaultDir
func NewOCRPlugin(baseDir string) *OCRPlugin {
	if baseDir == "" {
		baseDir = DefaultDir()
	}
	return &OCRPlugin{
		baseDir:  baseDir,
		repoBase: HFRepoBase,
		client:   http.DefaultClient,
		log:      logger.Named("plugin"),
	}
}

// SetRepoBase 替换下载源
func (p *OCRPlugin) SetRepoBase(base string) {
	p.mu.Lock()
	p.repoBase = base
	p.mu.Unlock()
}

// SetProgressCallback 设置进度回调
func (p *OCRPlugin) SetProgressCallback(callback func(float64)) {
	p.mu.Lock()
	p.onProgress = callback
	p.mu.Unlock()
}

// Config 插件目录下的模型路径
func (p *OCRPlugin) Config() ocr.Config {
	weights := filepath.Join(p.baseDir, "paddle_weights")
	return ocr.Config{
		OnnxRuntimeLibPath: filepath.Join(p.baseDir, "lib", ocr.OnnxRuntimeLibName()),
		DetModelPath:       filepath.Join(weights, "det.onnx"),
		RecModelPath:       filepath.Join(weights, "rec.onnx"),
		DictPath:           filepath.Join(weights, "dict.txt"),
	}
}

// GetStatus 获取插件状态
func (p *OCRPlugin) GetStatus() OCRPluginStatus {
	p.mu.RLock()
	installing, progress := p.installing, p.progress
	p.mu.RUnlock()

	cfg := p.Config()
	return OCRPluginStatus{
		Installed:   cfg.Available(),
		Downloading: installing,
		Progress:    progress,
		Config:      cfg,
	}
}

// IsInstalled 检查是否已安装
func (p *OCRPlugin) IsInstalled() bool {
	return p.Config().Available()
}

// Install 下载并安装 OCR 插件
func (p *OCRPlugin) Install(ctx context.Context) error {
	p.mu.Lock()
	if p.installing {
		p.mu.Unlock()
		return ErrDownloading
	}
	p.installing = true
	p.progress = 0
	repoBase := p.repoBase
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.installing = false
		p.mu.Unlock()
	}()

	for _, dir := range []string{"lib", "paddle_weights"} {
		if err := os.MkdirAll(filepath.Join(p.baseDir, dir), 0755); err != nil {
			return fmt.Errorf("创建目录失败: %w", err)
		}
	}

	files := p.downloadFiles(repoBase)
	var totalSize int64
	for _, f := range files {
		totalSize += f.size
	}

	var downloadedSize int64
	for _, f := range files {
		p.log.Info("下载 %s", f.name)
		err := p.download(ctx, f.url, f.destPath, func(downloaded int64) {
			if downloaded > f.size {
				downloaded = f.size
			}
			p.setProgress(float64(downloadedSize+downloaded) / float64(totalSize) * 100)
		})
		if err != nil {
			return fmt.Errorf("下载 %s 失败: %w", f.name, err)
		}
		downloadedSize += f.size
	}

	p.setProgress(100)
	p.log.Info("OCR 插件已安装到 %s", p.baseDir)
	return nil
}

// Uninstall 卸载 OCR 插件
func (p *OCRPlugin) Uninstall() error {
	return os.RemoveAll(p.baseDir)
}

func (p *OCRPlugin) setProgress(v float64) {
	p.mu.Lock()
	p.progress = v
	cb := p.onProgress
	p.mu.Unlock()
	if cb != nil {
		cb(v)
	}
}

// downloadFiles 运行库排在最前
func (p *OCRPlugin) downloadFiles(repoBase string) []downloadFile {
	cfg := p.Config()
	lib := ocr.OnnxRuntimeLibName()
	return []downloadFile{
		{name: lib, url: repoBase + "/lib/" + lib, destPath: cfg.OnnxRuntimeLibPath, size: 50 * 1024 * 1024},
		{name: "det.onnx", url: repoBase + "/paddle_weights/det.onnx", destPath: cfg.DetModelPath, size: 3 * 1024 * 1024},
		{name: "rec.onnx", url: repoBase + "/paddle_weights/rec.onnx", destPath: cfg.RecModelPath, size: 5 * 1024 * 1024},
		{name: "dict.txt", url: repoBase + "/paddle_weights/dict.txt", destPath: cfg.DictPath, size: 200 * 1024},
	}
}

// download 先写入 .tmp 再重命名
func (p *OCRPlugin) download(ctx context.Context, url, destPath string, onProgress func(int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	tmpPath := destPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	var downloaded int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				out.Close()
				os.Remove(tmpPath)
				return err
			}
			downloaded += int64(n)
			if onProgress != nil {
				onProgress(downloaded)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			os.Remove(tmpPath)
			return readErr
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, destPath)
}
