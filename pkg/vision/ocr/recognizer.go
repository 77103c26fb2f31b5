package ocr

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	goocr "github.com/getcharzp/go-ocr"

	"github.com/zoeyai/umaocr/internal/logger"
)

// Paddle 基于 PaddleOCR 的本地识别器
type Paddle struct {
	engine goocr.Engine
	config Config
	mu     sync.Mutex
	log    *logger.Logger
}

// NewPaddle 加载模型并创建识别器
func NewPaddle(config Config) (*Paddle, error) {
	engine, err := goocr.NewPaddleOcrEngine(goocr.Config{
		OnnxRuntimeLibPath: config.OnnxRuntimeLibPath,
		DetModelPath:       config.DetModelPath,
		RecModelPath:       config.RecModelPath,
		DictPath:           config.DictPath,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 OCR 引擎失败: %w", err)
	}

	log := logger.Named("ocr.paddle")
	log.Info("OCR 引擎初始化成功")
	return &Paddle{engine: engine, config: config, log: log}, nil
}

// Name 后端名称
func (p *Paddle) Name() string {
	return BackendPaddle
}

// Recognize 识别图像中的所有文字行
func (p *Paddle) Recognize(img image.Image) ([]OcrResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine == nil {
		return nil, ErrClosed
	}

	start := time.Now()
	results, err := p.engine.RunOCR(img)
	if err != nil {
		p.log.LogEvent("OCR", false, time.Since(start), "识别失败")
		return nil, fmt.Errorf("OCR 识别失败: %w", err)
	}

	out := make([]OcrResult, 0, len(results))
	for _, r := range results {
		out = append(out, convertResult(r))
	}
	p.log.LogEvent("OCR", true, time.Since(start), fmt.Sprintf("识别到 %d 行", len(out)))
	return out, nil
}

// ExtractText 识别并拼接文字
func (p *Paddle) ExtractText(ctx context.Context, img image.Image, combineLines bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	results, err := p.Recognize(img)
	if err != nil {
		return "", err
	}
	return JoinLines(results, combineLines), nil
}

// Close 释放模型
func (p *Paddle) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine != nil {
		p.engine.Destroy()
		p.engine = nil
	}
	return nil
}

// convertResult go-ocr 的 Box 为 {x1, y1, x2, y2}
func convertResult(r goocr.RecResult) OcrResult {
	box := r.Box
	return OcrResult{
		Text:       r.Text,
		Confidence: float64(r.Score),
		Position:   Point{X: (box[0] + box[2]) / 2, Y: (box[1] + box[3]) / 2},
		Box:        [2]Point{{X: box[0], Y: box[1]}, {X: box[2], Y: box[3]}},
	}
}
