package dedup

import "github.com/zoeyai/umaocr/pkg/frame"

// Tracker 记录最近一次实际识别的类型
type Tracker struct {
	last frame.Kind
}

// NewTracker 初始类型为 Fullscreen
func NewTracker() *Tracker {
	return &Tracker{last: frame.Fullscreen}
}

// Eligible 是否允许与缓存比较
//
// 同类型可比较；选项或说话人之后的剧情对话也可比较，
// 这样同一句台词不会因为中途识别过名牌或选项而被重复识别。
func (t *Tracker) Eligible(k frame.Kind) bool {
	if t.last == k {
		return true
	}
	return k == frame.StoryDialogue && (t.last == frame.Choices || t.last == frame.Speaker)
}

// Advance 记录一次识别
func (t *Tracker) Advance(k frame.Kind) {
	t.last = k
}

// Last 最近一次识别的类型
func (t *Tracker) Last() frame.Kind {
	return t.last
}
