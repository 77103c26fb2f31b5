package capture

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"
	"gocv.io/x/gocv"

	"github.com/zoeyai/umaocr/internal/logger"
	"github.com/zoeyai/umaocr/pkg/frame"
)

// Window 从游戏窗口截取画面
type Window struct {
	title    string
	gameArea frame.Region

	mu  sync.Mutex
	pid int
	log *logger.Logger
}

// NewWindow 按标题查找窗口，gameArea 为游戏画面相对窗口的位置
func NewWindow(title string, gameArea frame.Region) *Window {
	return &Window{title: title, gameArea: gameArea, log: logger.Named("capture")}
}

// SetGameArea 更新游戏画面位置
func (w *Window) SetGameArea(r frame.Region) {
	w.mu.Lock()
	w.gameArea = r
	w.mu.Unlock()
}

// Reset 忘记已找到的窗口，下次重新查找
func (w *Window) Reset() {
	w.mu.Lock()
	w.pid = 0
	w.mu.Unlock()
}

// PID 查找并缓存游戏窗口所属进程
func (w *Window) PID() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pid != 0 && running(w.pid) {
		return w.pid, nil
	}
	w.pid = 0

	pid, err := findWindow(w.title)
	if err != nil {
		return 0, err
	}
	w.pid = pid
	w.log.Info("找到游戏窗口: PID=%d 进程=%s", pid, processName(pid))
	return pid, nil
}

// Bounds 游戏窗口在屏幕上的位置
func (w *Window) Bounds() (frame.Region, error) {
	pid, err := w.PID()
	if err != nil {
		return frame.Region{}, err
	}
	x, y, width, height := robotgo.GetBounds(pid)
	if width == 0 || height == 0 {
		w.Reset()
		return frame.Region{}, fmt.Errorf("无法获取窗口边界: PID=%d: %w", pid, ErrWindowNotFound)
	}
	return frame.Region{X: x, Y: y, Width: width, Height: height}, nil
}

// Active 游戏窗口是否位于前台
func (w *Window) Active() bool {
	return matchTitle(robotgo.GetTitle(), w.title)
}

// Capture 截取游戏区域并缩放到规范尺寸
func (w *Window) Capture(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	window, err := w.Bounds()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	area := absoluteArea(window, w.gameArea)
	w.mu.Unlock()

	start := time.Now()
	img, err := robotgo.CaptureImg(area.X, area.Y, area.Width, area.Height)
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}

	f, err := resize(img)
	if err != nil {
		return nil, err
	}
	w.log.Debug("截取 %s 用时 %v", area, time.Since(start))
	return f, nil
}

// absoluteArea 游戏区域的屏幕坐标
func absoluteArea(window, game frame.Region) frame.Region {
	return game.Offset(window.X, window.Y)
}

// resize 用 OpenCV 的区域插值缩放到规范尺寸
func resize(img image.Image) (*frame.Frame, error) {
	b := img.Bounds()
	if b.Dx() == frame.Width && b.Dy() == frame.Height {
		return frame.New(img)
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("转换图像失败: %w", err)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(frame.Width, frame.Height), 0, 0, gocv.InterpolationArea)

	out, err := dst.ToImage()
	if err != nil {
		return nil, fmt.Errorf("转换图像失败: %w", err)
	}
	return frame.New(out)
}

// findWindow 遍历进程，返回第一个标题匹配的窗口，排除自身
func findWindow(title string) (int, error) {
	pids, err := process.Pids()
	if err != nil {
		return 0, fmt.Errorf("获取进程列表失败: %w", err)
	}

	self := os.Getpid()
	for _, pid := range pids {
		if int(pid) == self {
			continue
		}
		if matchTitle(robotgo.GetTitle(int(pid)), title) {
			return int(pid), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrWindowNotFound, title)
}

// matchTitle 不区分大小写的包含匹配
func matchTitle(windowTitle, want string) bool {
	windowTitle = strings.TrimSpace(windowTitle)
	if windowTitle == "" || want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(windowTitle), strings.ToLower(want))
}

func running(pid int) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	ok, err := proc.IsRunning()
	return err == nil && ok
}

func processName(pid int) string {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return ""
	}
	name, _ := proc.Name()
	return name
}
