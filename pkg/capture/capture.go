// Package capture 获取游戏画面并缩放到规范尺寸
package capture

import (
	"context"
	"errors"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/zoeyai/umaocr/pkg/frame"
)

// ErrWindowNotFound 未找到游戏窗口
var ErrWindowNotFound = errors.New("未找到游戏窗口")

// Source 画面来源
type Source interface {
	// Capture 获取一帧规范尺寸画面
	Capture(ctx context.Context) (*frame.Frame, error)
	// Active 来源当前是否可用（如游戏窗口位于前台）
	Active() bool
}

// Scale 用 x/image 把任意图像缩放为规范尺寸
func Scale(img image.Image) (*frame.Frame, error) {
	b := img.Bounds()
	if b.Dx() == frame.Width && b.Dy() == frame.Height {
		return frame.New(img)
	}
	dst := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return frame.New(dst)
}
