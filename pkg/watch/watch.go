// Package watch 轮询游戏画面，识别新出现的文字并翻译
package watch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/zoeyai/umaocr/internal/logger"
	"github.com/zoeyai/umaocr/pkg/capture"
	"github.com/zoeyai/umaocr/pkg/engine"
	"github.com/zoeyai/umaocr/pkg/frame"
	"github.com/zoeyai/umaocr/pkg/translate"
)

// DefaultInterval 默认轮询间隔
const DefaultInterval = 300 * time.Millisecond

// maxSkips 连续跳过相似画面的上限，之后强制检测一次
const maxSkips = 4

// ErrUnsupportedKind 不能手动触发的区域类型
var ErrUnsupportedKind = errors.New("不支持手动识别的区域类型")

// Engine 识别引擎
type Engine interface {
	StoryDialogue(ctx context.Context, f *frame.Frame, force bool) (*engine.DialogueResult, error)
	Choices(ctx context.Context, f *frame.Frame, force bool) (string, error)
	Center(ctx context.Context, f *frame.Frame, force bool) (string, bool, error)
	Fullscreen(ctx context.Context, f *frame.Frame, force bool) (string, bool, error)
}

// Event 一段新识别的文字
type Event struct {
	Kind        frame.Kind `json:"kind"`
	Text        string     `json:"text"`
	Translation string     `json:"translation,omitempty"`
	// Err 翻译失败的原因，此时 Translation 为空
	Err error `json:"-"`
}

// Option 配置选项
type Option func(*Watcher)

// WithInterval 设置轮询间隔
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithFrameSkip 画面感知哈希距离不超过 maxDistance 时跳过检测
func WithFrameSkip(maxDistance int) Option {
	return func(w *Watcher) {
		w.skipSimilar = true
		w.maxDistance = maxDistance
	}
}

// WithHandler 设置新文字的回调
func WithHandler(h func(Event)) Option {
	return func(w *Watcher) { w.handler = h }
}

// WithLogger 设置日志记录器
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) { w.log = l }
}

// Watcher 轮询器
//
// Run 与 Trigger 可以并发调用，共用同一个"上一段文字"。
type Watcher struct {
	src      capture.Source
	eng      Engine
	tr       translate.Translator
	interval time.Duration
	handler  func(Event)
	log      *logger.Logger

	skipSimilar bool
	maxDistance int

	mu       sync.Mutex
	lastText string
	lastHash *goimagehash.ImageHash
	skipped  int
}

// New 创建轮询器，tr 为 nil 时只识别不翻译
func New(src capture.Source, eng Engine, tr translate.Translator, opts ...Option) *Watcher {
	w := &Watcher{
		src:      src,
		eng:      eng,
		tr:       tr,
		interval: DefaultInterval,
		log:      logger.Named("watch"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run 按间隔轮询直到 ctx 结束
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("开始轮询，间隔 %v", w.interval)
	for {
		select {
		case <-ctx.Done():
			w.log.Info("停止轮询")
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Tick(ctx); err != nil {
				if errors.Is(err, capture.ErrWindowNotFound) {
					w.log.Debug("%v", err)
				} else if ctx.Err() == nil {
					w.log.Warn("轮询失败: %v", err)
				}
			}
		}
	}
}

// Tick 执行一次轮询，先找选项再找剧情对话
//
// 返回 true 表示找到了文字（包括与上一段相同的文字）。
func (w *Watcher) Tick(ctx context.Context) (bool, error) {
	if !w.src.Active() {
		return false, nil
	}
	f, err := w.src.Capture(ctx)
	if err != nil {
		return false, err
	}
	if w.similar(f) {
		return false, nil
	}

	kind := frame.Choices
	text, err := w.eng.Choices(ctx, f, false)
	if err != nil {
		return false, err
	}
	if text == "" {
		r, err := w.eng.StoryDialogue(ctx, f, false)
		if err != nil {
			return false, err
		}
		if r != nil {
			kind, text = frame.StoryDialogue, r.Text()
		}
	}
	return w.handle(ctx, kind, text), nil
}

// Trigger 手动强制识别指定区域，未找到文字时返回 nil
func (w *Watcher) Trigger(ctx context.Context, kind frame.Kind) (*Event, error) {
	f, err := w.src.Capture(ctx)
	if err != nil {
		return nil, err
	}

	var text string
	switch kind {
	case frame.StoryDialogue:
		r, err := w.eng.StoryDialogue(ctx, f, true)
		if err != nil {
			return nil, err
		}
		if r != nil {
			text = r.Text()
		}
	case frame.Choices:
		text, err = w.eng.Choices(ctx, f, true)
	case frame.Center:
		text, _, err = w.eng.Center(ctx, f, true)
	case frame.Fullscreen:
		text, _, err = w.eng.Fullscreen(ctx, f, true)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	ev := w.process(ctx, kind, text)
	return &ev, nil
}

// LastText 上一段处理过的文字
func (w *Watcher) LastText() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastText
}

// handle 空白忽略，与上一段相同时不重复翻译
func (w *Watcher) handle(ctx context.Context, kind frame.Kind, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	w.mu.Lock()
	same := text == w.lastText
	w.mu.Unlock()
	if same {
		return true
	}
	w.process(ctx, kind, text)
	return true
}

// process 翻译并通知
func (w *Watcher) process(ctx context.Context, kind frame.Kind, text string) Event {
	w.mu.Lock()
	w.lastText = text
	w.mu.Unlock()

	ev := Event{Kind: kind, Text: text}
	if w.tr != nil {
		ev.Translation, ev.Err = w.tr.Translate(ctx, text)
		if ev.Err != nil {
			w.log.Warn("翻译失败: %v", ev.Err)
		}
	}
	w.log.Info("[%s] %s", kind, strings.ReplaceAll(text, "\n", " / "))
	if w.handler != nil {
		w.handler(ev)
	}
	return ev
}

// similar 与上一帧的感知哈希足够接近时跳过，连续跳过有上限
func (w *Watcher) similar(f *frame.Frame) bool {
	if !w.skipSimilar {
		return false
	}
	hash, err := goimagehash.PerceptionHash(f.Image())
	if err != nil {
		w.log.Debug("计算感知哈希失败: %v", err)
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	prev := w.lastHash
	w.lastHash = hash
	if prev == nil {
		return false
	}
	dist, err := prev.Distance(hash)
	if err != nil || dist > w.maxDistance || w.skipped >= maxSkips {
		w.skipped = 0
		return false
	}
	w.skipped++
	w.log.Debug("画面未变化，跳过 (距离 %d)", dist)
	return true
}
