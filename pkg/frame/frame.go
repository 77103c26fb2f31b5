// Package frame 定义规范尺寸的游戏画面、区域与区域类型
//
// 所有检测逻辑都运行在固定的 1165x2072 坐标系下，截图方负责在交给
// 检测器之前把画面缩放到该尺寸。
package frame

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// 规范处理尺寸
const (
	Width  = 1165
	Height = 2072
)

var (
	// ErrFrameSize 画面不是规范尺寸
	ErrFrameSize = errors.New("画面尺寸不符合规范")
	// ErrRegionOutOfBounds 区域超出画面范围
	ErrRegionOutOfBounds = errors.New("区域超出画面范围")
)

// 固定区域
var (
	// FullGameArea 整个游戏画面
	FullGameArea = Region{X: 0, Y: 0, Width: Width, Height: Height}
	// CenterDialogueArea 画面中部的对话区域
	CenterDialogueArea = Region{X: 10, Y: 615, Width: 1050, Height: 800}
)

// Frame 一次检测期间不可变的规范尺寸画面
type Frame struct {
	img *image.RGBA
}

// New 从任意 image.Image 复制出 Frame，尺寸必须是规范尺寸
func New(src image.Image) (*Frame, error) {
	if src == nil {
		return nil, fmt.Errorf("画面为空: %w", ErrFrameSize)
	}
	b := src.Bounds()
	if b.Dx() != Width || b.Dy() != Height {
		return nil, fmt.Errorf("%dx%d, 期望 %dx%d: %w", b.Dx(), b.Dy(), Width, Height, ErrFrameSize)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	return &Frame{img: rgba}, nil
}

// Bounds 返回画面边界
func (f *Frame) Bounds() image.Rectangle {
	return f.img.Bounds()
}

// Image 返回底层图像，调用方不得修改
func (f *Frame) Image() *image.RGBA {
	return f.img
}

// At 返回 (x, y) 处的像素
func (f *Frame) At(x, y int) color.RGBA {
	i := f.img.PixOffset(x, y)
	p := f.img.Pix[i : i+4 : i+4]
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// Crop 复制区域内的像素，区域越界时直接返回错误
func (f *Frame) Crop(r Region) (*image.RGBA, error) {
	if r.Empty() || !r.Within(Width, Height) {
		return nil, fmt.Errorf("裁剪 %s: %w", r, ErrRegionOutOfBounds)
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(dst, dst.Bounds(), f.img, image.Pt(r.X, r.Y), draw.Src)
	return dst, nil
}

// Column 读取从 (x, y) 开始向下 n 个像素
func (f *Frame) Column(x, y, n int) ([]color.RGBA, error) {
	return f.pixels(Region{X: x, Y: y, Width: 1, Height: n})
}

// Row 读取从 (x, y) 开始向右 n 个像素
func (f *Frame) Row(x, y, n int) ([]color.RGBA, error) {
	return f.pixels(Region{X: x, Y: y, Width: n, Height: 1})
}

// Pixels 按行优先顺序读取区域内所有像素
func (f *Frame) Pixels(r Region) ([]color.RGBA, error) {
	return f.pixels(r)
}

func (f *Frame) pixels(r Region) ([]color.RGBA, error) {
	if r.Empty() || !r.Within(Width, Height) {
		return nil, fmt.Errorf("采样 %s: %w", r, ErrRegionOutOfBounds)
	}

	out := make([]color.RGBA, 0, r.Width*r.Height)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			out = append(out, f.At(x, y))
		}
	}
	return out, nil
}

// VStack 按顺序纵向拼接图像，宽度取最大值，高度为总和
func VStack(imgs ...*image.RGBA) *image.RGBA {
	w, h := 0, 0
	for _, img := range imgs {
		b := img.Bounds()
		if b.Dx() > w {
			w = b.Dx()
		}
		h += b.Dy()
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(dst, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Src)
		y += b.Dy()
	}
	return dst
}
