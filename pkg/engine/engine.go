// Package engine 串联检测、变化判断与文字识别
package engine

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/zoeyai/umaocr/internal/logger"
	"github.com/zoeyai/umaocr/pkg/dedup"
	"github.com/zoeyai/umaocr/pkg/detect"
	"github.com/zoeyai/umaocr/pkg/frame"
	"github.com/zoeyai/umaocr/pkg/pixel"
)

// Recognizer 文字识别接口
type Recognizer interface {
	// ExtractText 识别图像文字，combineLines 为 true 时多行合并为一段
	ExtractText(ctx context.Context, img image.Image, combineLines bool) (string, error)
}

// Snapshotter 手动识别时保存调试截图
type Snapshotter interface {
	Save(kind frame.Kind, crop image.Image, full *frame.Frame, areas ...frame.Region) error
}

// DialogueResult 剧情对话识别结果
type DialogueResult struct {
	// Speaker 说话人，旁白或识别失败时为空
	Speaker  string `json:"speaker,omitempty"`
	Dialogue string `json:"dialogue"`
}

// Text 合并为 "说话人\n正文"
func (r *DialogueResult) Text() string {
	if r.Speaker == "" {
		return r.Dialogue
	}
	return r.Speaker + "\n" + r.Dialogue
}

// Option 配置选项
type Option func(*Engine)

// WithSnapshotter 设置调试截图保存器
func WithSnapshotter(s Snapshotter) Option {
	return func(e *Engine) { e.snap = s }
}

// WithLogger 设置日志记录器
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// Engine 识别引擎
//
// 每次检测到提交的完整流程在同一把锁内执行，轮询与手动触发可以共用一个实例。
type Engine struct {
	mu      sync.Mutex
	rec     Recognizer
	story   *detect.StoryDetector
	choice  *detect.ChoiceDetector
	cache   *dedup.Cache
	tracker *dedup.Tracker
	snap    Snapshotter
	log     *logger.Logger
}

// New 创建识别引擎
func New(rec Recognizer, opts ...Option) *Engine {
	e := &Engine{
		rec:     rec,
		story:   detect.NewStoryDetector(),
		choice:  detect.NewChoiceDetector(),
		cache:   dedup.NewCache(),
		tracker: dedup.NewTracker(),
		log:     logger.Named("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Area 识别画面中的指定区域
//
// 内容未变化时返回 ok=false；识别失败时缓存与类型记录保持不变。
func (e *Engine) Area(ctx context.Context, f *frame.Frame, region frame.Region, kind frame.Kind, force, reverse bool) (string, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.area(ctx, f, region, kind, force, reverse)
}

// StoryDialogue 识别剧情对话，未找到或未变化时返回 nil
func (e *Engine) StoryDialogue(ctx context.Context, f *frame.Frame, force bool) (*DialogueResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	areas, err := e.story.Detect(f)
	if err != nil {
		return nil, fmt.Errorf("检测对话框失败: %w", err)
	}
	if areas == nil {
		return nil, nil
	}

	dialogue, ok, err := e.area(ctx, f, areas.Dialogue, frame.StoryDialogue, force, false)
	if err != nil || !ok {
		return nil, err
	}
	result := &DialogueResult{Dialogue: dialogue}

	if areas.Speaker != nil {
		speaker, ok, err := e.area(ctx, f, *areas.Speaker, frame.Speaker, force, true)
		if err != nil {
			e.log.Warn("识别说话人失败: %v", err)
		} else if ok {
			result.Speaker = strings.TrimSpace(speaker)
		}
	}
	return result, nil
}

// Choices 识别选项，未找到或未变化时返回空字符串
func (e *Engine) Choices(ctx context.Context, f *frame.Frame, force bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	set, err := e.choice.Detect(f)
	if err != nil {
		return "", fmt.Errorf("检测选项失败: %w", err)
	}
	if set == nil {
		return "", nil
	}

	areas := make([]frame.Region, 0, len(set.Slots))
	for _, i := range set.Slots {
		areas = append(areas, e.choice.SlotArea(i))
	}
	text, _, err := e.recognize(ctx, f, set.Image, set.Region, frame.Choices, force, areas...)
	return text, err
}

// Center 识别画面中部的对话区域
func (e *Engine) Center(ctx context.Context, f *frame.Frame, force bool) (string, bool, error) {
	return e.Area(ctx, f, frame.CenterDialogueArea, frame.Center, force, false)
}

// Fullscreen 识别整个画面
func (e *Engine) Fullscreen(ctx context.Context, f *frame.Frame, force bool) (string, bool, error) {
	return e.Area(ctx, f, frame.FullGameArea, frame.Fullscreen, force, false)
}

// LastKind 最近一次识别的类型
func (e *Engine) LastKind() frame.Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.Last()
}

// Reset 清空变化缓存，之后的每个区域都会重新识别
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache.Reset()
	e.tracker = dedup.NewTracker()
}

func (e *Engine) area(ctx context.Context, f *frame.Frame, region frame.Region, kind frame.Kind, force, reverse bool) (string, bool, error) {
	img, err := f.Crop(region)
	if err != nil {
		return "", false, fmt.Errorf("裁剪%s区域失败: %w", kind, err)
	}
	if reverse {
		pixel.ReverseAndNormalize(img)
	}
	return e.recognize(ctx, f, img, region, kind, force, region)
}

// recognize 变化判断、识别并在成功后提交
//
// areas 为截图标注用的画面区域，选项拼接图的 region 不是画面坐标。
func (e *Engine) recognize(ctx context.Context, f *frame.Frame, img *image.RGBA, region frame.Region, kind frame.Kind, force bool, areas ...frame.Region) (string, bool, error) {
	d := e.cache.Check(kind, img, region, force, e.tracker.Eligible(kind))
	if !d.Changed {
		return "", false, nil
	}

	if force && e.snap != nil {
		if err := e.snap.Save(kind, img, f, areas...); err != nil {
			e.log.Warn("保存截图失败: %v", err)
		}
	}

	start := time.Now()
	text, err := e.rec.ExtractText(ctx, img, kind == frame.StoryDialogue)
	if err != nil {
		e.log.LogEvent(kind.String(), false, time.Since(start), err.Error())
		return "", false, fmt.Errorf("识别%s失败: %w", kind, err)
	}

	e.cache.Commit(d)
	e.tracker.Advance(kind)
	e.log.LogEvent(kind.String(), true, time.Since(start), fmt.Sprintf("%s %d 字", region, len([]rune(text))))
	return text, true, nil
}
