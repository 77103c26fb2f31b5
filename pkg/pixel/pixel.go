// Package pixel 提供检测器共用的颜色判定与缩略图比较
package pixel

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// 默认阈值
const (
	SimilarThreshold = 45
	WhiteThreshold   = 210 * 3
	DarkThreshold    = 128 * 3

	// BadPixelDivisor 缩略图允许的差异像素比例为 1/BadPixelDivisor
	BadPixelDivisor = 20
)

// White 纯白
var White = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// IsSimilar 每个通道的差值都严格小于 threshold
func IsSimilar(c1, c2 color.RGBA, threshold int) bool {
	return absDiff(c1.R, c2.R) < threshold &&
		absDiff(c1.G, c2.G) < threshold &&
		absDiff(c1.B, c2.B) < threshold
}

// Similar 使用默认阈值的 IsSimilar
func Similar(c1, c2 color.RGBA) bool {
	return IsSimilar(c1, c2, SimilarThreshold)
}

// IsWhite R+G+B 大于默认阈值
func IsWhite(c color.RGBA) bool {
	return IsWhiteT(c, WhiteThreshold)
}

// IsWhiteT R+G+B 大于 threshold
func IsWhiteT(c color.RGBA, threshold int) bool {
	return sum(c) > threshold
}

// IsDark R+G+B 小于默认阈值
func IsDark(c color.RGBA) bool {
	return IsDarkT(c, DarkThreshold)
}

// IsDarkT R+G+B 小于 threshold
func IsDarkT(c color.RGBA, threshold int) bool {
	return sum(c) < threshold
}

// Sum 三通道之和
func Sum(c color.RGBA) int {
	return sum(c)
}

// Reverse 反色，保留 0.9 的衰减系数
func Reverse(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(255 - float64(c.R)*0.9),
		G: uint8(255 - float64(c.G)*0.9),
		B: uint8(255 - float64(c.B)*0.9),
		A: 255,
	}
}

// ScaleToWhite 按通道缩放，使 target 映射为白色
func ScaleToWhite(c, target color.RGBA) color.RGBA {
	return color.RGBA{
		R: scaleChannel(c.R, target.R),
		G: scaleChannel(c.G, target.G),
		B: scaleChannel(c.B, target.B),
		A: 255,
	}
}

// ReverseAndNormalize 原地反色并把背景拉到白色
//
// 背景取 (0,0) 像素。浅色文字反色后变为深色文字，背景归一为白色，
// 识别器因此总能拿到白底黑字。
func ReverseAndNormalize(img *image.RGBA) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	bg := Reverse(img.RGBAAt(b.Min.X, b.Min.Y))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, ScaleToWhite(Reverse(img.RGBAAt(x, y)), bg))
		}
	}
}

// Thumbnail 按 1/div 线性缩小图像，每边至少 1 像素
func Thumbnail(src image.Image, div int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx()/div, b.Dy()/div
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

// IsSimilarThumbnail 容忍少量噪点的近似相等
//
// 尺寸不同直接返回 false；差异像素数严格小于 w*h/20 时视为相同。
func IsSimilarThumbnail(a, b *image.RGBA) bool {
	if a == nil || b == nil {
		return false
	}
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return false
	}

	w, h := ab.Dx(), ab.Dy()
	bad := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !Similar(a.RGBAAt(ab.Min.X+x, ab.Min.Y+y), b.RGBAAt(bb.Min.X+x, bb.Min.Y+y)) {
				bad++
			}
		}
	}
	return bad < w*h/BadPixelDivisor
}

func scaleChannel(c, target uint8) uint8 {
	v := int(float64(c)*256/float64(int(target)+1) - 1)
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

func sum(c color.RGBA) int {
	return int(c.R) + int(c.G) + int(c.B)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
