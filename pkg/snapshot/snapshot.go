// Package snapshot 保存手动识别时的调试截图
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zoeyai/umaocr/pkg/frame"
)

const (
	labelSize   = 28
	borderWidth = 3
)

// BoxColor 标注框颜色
var BoxColor = color.RGBA{R: 255, G: 0, B: 64, A: 255}

var (
	fontOnce sync.Once
	labelFnt *truetype.Font
	fontErr  error
)

func labelFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		labelFnt, fontErr = truetype.Parse(goregular.TTF)
	})
	return labelFnt, fontErr
}

// Dir 截图目录
type Dir struct {
	path string
}

// NewDir 创建截图目录对象，目录在首次保存时创建
func NewDir(path string) *Dir {
	return &Dir{path: path}
}

// Path 截图目录
func (d *Dir) Path() string {
	return d.path
}

// Save 写入 <kind>.png，有整帧画面时另写 <kind>_annotated.png
func (d *Dir) Save(kind frame.Kind, crop image.Image, full *frame.Frame, areas ...frame.Region) error {
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return fmt.Errorf("创建截图目录失败: %w", err)
	}
	if err := writePNG(filepath.Join(d.path, kind.String()+".png"), crop); err != nil {
		return err
	}
	if full == nil || len(areas) == 0 {
		return nil
	}

	annotated, err := Annotate(full.Image(), kind.String(), areas...)
	if err != nil {
		return err
	}
	return writePNG(filepath.Join(d.path, kind.String()+"_annotated.png"), annotated)
}

// Annotate 复制画面并为每个区域画框、写标签
func Annotate(src image.Image, label string, areas ...frame.Region) (*image.RGBA, error) {
	out := image.NewRGBA(src.Bounds())
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)

	f, err := labelFont()
	if err != nil {
		return nil, fmt.Errorf("加载字体失败: %w", err)
	}
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(labelSize)
	c.SetClip(out.Bounds())
	c.SetDst(out)
	c.SetSrc(image.NewUniform(BoxColor))
	c.SetHinting(font.HintingNone)

	for _, r := range areas {
		drawBox(out, r.Rect())
		text := fmt.Sprintf("%s %s", label, r)
		pt := freetype.Pt(r.X+borderWidth+2, r.Y+borderWidth+labelSize)
		if _, err := c.DrawString(text, pt); err != nil {
			return nil, fmt.Errorf("绘制标签失败: %w", err)
		}
	}
	return out, nil
}

// drawBox 沿矩形内侧画边框
func drawBox(img *image.RGBA, r image.Rectangle) {
	src := image.NewUniform(BoxColor)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+borderWidth),
		image.Rect(r.Min.X, r.Max.Y-borderWidth, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+borderWidth, r.Max.Y),
		image.Rect(r.Max.X-borderWidth, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Src)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建截图文件失败: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("编码截图失败: %w", err)
	}
	return f.Close()
}
