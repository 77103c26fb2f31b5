package capture

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/zoeyai/umaocr/pkg/frame"
)

// File 从图片文件读取画面，读取一次后缓存
type File struct {
	path string

	once  sync.Once
	frame *frame.Frame
	err   error
}

// NewFile 创建文件画面来源
func NewFile(path string) *File {
	return &File{path: path}
}

// Capture 返回文件内容缩放后的画面
func (f *File) Capture(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.once.Do(func() {
		f.frame, f.err = loadFrame(f.path)
	})
	return f.frame, f.err
}

// Active 文件来源总是可用
func (f *File) Active() bool {
	return true
}

func loadFrame(path string) (*frame.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开图像文件失败: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图像失败: %w", err)
	}
	return Scale(img)
}
