// Package ocr 提供文字识别后端
//
// 基本用法:
//
//	backend, err := ocr.NewWithFallback(cfg.OCR, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//	text, err := backend.ExtractText(ctx, img, true)
package ocr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/zoeyai/umaocr/internal/logger"
)

// 后端名称
const (
	BackendPaddle = "paddle"
	BackendGRPC   = "grpc"
)

var (
	// ErrUnknownBackend 未知的后端名称
	ErrUnknownBackend = errors.New("未知的 OCR 后端")
	// ErrClosed 识别器已关闭
	ErrClosed = errors.New("OCR 识别器已关闭")
)

// Backend 文字识别后端
type Backend interface {
	Name() string
	ExtractText(ctx context.Context, img image.Image, combineLines bool) (string, error)
	Close() error
}

// Options 各后端的配置
type Options struct {
	Paddle Config       `json:"paddle"`
	Remote RemoteConfig `json:"remote"`
}

// DefaultOptions 默认配置
func DefaultOptions() Options {
	return Options{Paddle: DefaultConfig()}
}

// LoadOptions 从 JSON 文件读取后端配置，文件为空时返回默认配置
//
// 文件中未出现的模型路径保留默认值。
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("读取 OCR 配置失败: %w", err)
	}
	if err := json.Unmarshal(data, &opts); err != nil {
		return DefaultOptions(), fmt.Errorf("解析 OCR 配置失败: %w", err)
	}
	return opts, nil
}

// New 按名称创建后端，空名称为 paddle
func New(backend string, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendPaddle:
		return NewPaddle(opts.Paddle)
	case BackendGRPC:
		return NewRemote(opts.Remote)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, backend)
	}
}

// NewWithFallback 创建失败时退回 paddle
func NewWithFallback(backend string, opts Options) (Backend, error) {
	b, err := New(backend, opts)
	if err == nil {
		return b, nil
	}
	log := logger.Named("ocr")
	log.Warn("创建 OCR 后端 %q 失败，改用 %s: %v", backend, BackendPaddle, err)
	return NewPaddle(opts.Paddle)
}
