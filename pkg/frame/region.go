package frame

import (
	"fmt"
	"image"
	"strings"
)

// Region 规范坐标系下的矩形区域
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRegion 创建区域
func NewRegion(x, y, w, h int) Region {
	return Region{X: x, Y: y, Width: w, Height: h}
}

// Rect 转换为 image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty 宽或高不为正
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Within 区域是否完全位于 w x h 的画面内
func (r Region) Within(w, h int) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.Width <= w && r.Y+r.Height <= h
}

// Offset 平移区域
func (r Region) Offset(dx, dy int) Region {
	return Region{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

func (r Region) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Kind 区域提取的原因，也是缓存与状态的键
type Kind int

const (
	StoryDialogue Kind = iota
	Choices
	Center
	Fullscreen
	Speaker

	// NumKinds 区域类型数量，可用作数组长度
	NumKinds = int(Speaker) + 1
)

var kindNames = [NumKinds]string{
	StoryDialogue: "StoryDialogue",
	Choices:       "Choices",
	Center:        "Center",
	Fullscreen:    "Fullscreen",
	Speaker:       "Speaker",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid 是否为已定义的类型
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < NumKinds
}

// Kinds 返回所有类型
func Kinds() []Kind {
	return []Kind{StoryDialogue, Choices, Center, Fullscreen, Speaker}
}

// ParseKind 解析类型名，支持 story/center/choices/fullscreen/speaker 简写
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "storydialogue", "story":
		return StoryDialogue, nil
	case "choices", "choice":
		return Choices, nil
	case "center":
		return Center, nil
	case "fullscreen", "full":
		return Fullscreen, nil
	case "speaker":
		return Speaker, nil
	default:
		return 0, fmt.Errorf("未知的区域类型: %q", s)
	}
}
