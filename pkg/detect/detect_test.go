package detect

import (
	"image"
	"image/color"
	"testing"

	"github.com/zoeyai/umaocr/pkg/frame"
	"github.com/zoeyai/umaocr/pkg/pixel"
)

var (
	gray      = color.RGBA{R: 100, G: 100, B: 100, A: 255}
	dark      = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	buttonCol = color.RGBA{R: 90, G: 170, B: 60, A: 255}
	red       = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

func canvas(bg color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, bg.A
	}
	return img
}

func paint(img *image.RGBA, r frame.Region, c color.RGBA) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func mustFrame(t *testing.T, img *image.RGBA) *frame.Frame {
	t.Helper()
	f, err := frame.New(img)
	if err != nil {
		t.Fatalf("创建画面失败: %v", err)
	}
	return f
}

// storyCanvas 绘制一个按钮行为 btn、高光长度为 run 的对话框
func storyCanvas(btn, run int) *image.RGBA {
	img := canvas(gray)
	h := btn - buttonRowGap
	paint(img, frame.Region{X: storyProbeX, Y: storyProbeY + h - run, Width: 1, Height: run}, pixel.White)

	row := storyProbeY + btn
	paint(img, frame.Region{X: buttonBandX, Y: row, Width: buttonBandWidth, Height: 1}, buttonCol)
	paint(img, frame.Region{X: storyProbeX, Y: row - boxTopOffset, Width: 1, Height: 1}, buttonCol)
	img.SetRGBA(storyProbeX, row-boxTopOffset+boxTopWhiteIndex, pixel.White)
	return img
}

func TestStoryDetectWithSpeaker(t *testing.T) {
	d := NewStoryDetector()
	areas, err := d.Detect(mustFrame(t, storyCanvas(266, 70)))
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if areas == nil {
		t.Fatal("应检测到对话框")
	}
	if areas.ButtonRow != 266 {
		t.Errorf("按钮行错误: %d", areas.ButtonRow)
	}
	if want := frame.NewRegion(85, 1561, 965, 235); areas.Dialogue != want {
		t.Errorf("正文区域错误: %s, 期望 %s", areas.Dialogue, want)
	}
	if areas.Speaker == nil {
		t.Fatal("名牌探测处无白色时应有说话人")
	}
	if want := frame.NewRegion(100, 1485, 450, 60); *areas.Speaker != want {
		t.Errorf("说话人区域错误: %s, 期望 %s", *areas.Speaker, want)
	}
	t.Logf("检测结果: 正文=%s 说话人=%s", areas.Dialogue, *areas.Speaker)
}

func TestStoryDetectSnap(t *testing.T) {
	for _, btn := range []int{264, 265, 267} {
		areas, err := NewStoryDetector().Detect(mustFrame(t, storyCanvas(btn, 70)))
		if err != nil || areas == nil {
			t.Fatalf("btn=%d 应检测到对话框: %v", btn, err)
		}
		if areas.ButtonRow != 266 || areas.Dialogue.Y != 1561 {
			t.Errorf("btn=%d 应吸附到 266, 实际 %d (正文 y=%d)", btn, areas.ButtonRow, areas.Dialogue.Y)
		}
	}

	areas, err := NewStoryDetector().Detect(mustFrame(t, storyCanvas(263, 70)))
	if err != nil || areas == nil {
		t.Fatalf("btn=263 应检测到对话框: %v", err)
	}
	if areas.ButtonRow != 263 {
		t.Errorf("263 不在吸附区间内, 实际 %d", areas.ButtonRow)
	}

	areas, err = NewStoryDetector().Detect(mustFrame(t, storyCanvas(268, 70)))
	if err != nil || areas == nil {
		t.Fatalf("btn=268 应检测到对话框: %v", err)
	}
	if areas.ButtonRow != 268 || areas.Dialogue.Y != storyProbeY+268-boxTopOffset+dialogueOffset {
		t.Errorf("268 不在吸附区间内, 实际 %d (正文 y=%d)", areas.ButtonRow, areas.Dialogue.Y)
	}
}

func TestStoryDetectNarration(t *testing.T) {
	img := storyCanvas(266, 70)
	top := storyProbeY + 266 - boxTopOffset
	img.SetRGBA(speakerProbeX+7, top+speakerProbeOffset, pixel.White)

	areas, err := NewStoryDetector().Detect(mustFrame(t, img))
	if err != nil || areas == nil {
		t.Fatalf("应检测到对话框: %v", err)
	}
	if areas.Speaker != nil {
		t.Errorf("名牌探测处有白色时不应有说话人: %s", *areas.Speaker)
	}
}

func TestStoryDetectIconSuppresses(t *testing.T) {
	img := storyCanvas(266, 70)
	img.SetRGBA(iconProbeX, storyProbeY+266-3, pixel.White)

	areas, err := NewStoryDetector().Detect(mustFrame(t, img))
	if err != nil {
		t.Fatal(err)
	}
	if areas != nil {
		t.Error("图标区域出现白色时应视为未找到")
	}
}

func TestStoryDetectNotFound(t *testing.T) {
	tests := []struct {
		name string
		img  *image.RGBA
	}{
		{"无白色", canvas(gray)},
		{"白色段长度恰为 65", storyCanvas(266, 65)},
		{"按钮行越界", storyCanvas(300, 70)},
	}

	// 白色一直延续到探测条末尾，不会被评估
	tail := canvas(gray)
	paint(tail, frame.Region{X: storyProbeX, Y: storyProbeY + 200, Width: 1, Height: 100}, pixel.White)
	tests = append(tests, struct {
		name string
		img  *image.RGBA
	}{"白色段到达末尾", tail})

	// 上边框没有白色
	noTop := storyCanvas(266, 70)
	noTop.SetRGBA(storyProbeX, storyProbeY+266-boxTopOffset+boxTopWhiteIndex, gray)
	tests = append(tests, struct {
		name string
		img  *image.RGBA
	}{"上边框校验失败", noTop})

	// 按钮色带颜色不一致
	badBand := storyCanvas(266, 70)
	badBand.SetRGBA(buttonBandX+399, storyProbeY+266, red)
	tests = append(tests, struct {
		name string
		img  *image.RGBA
	}{"按钮色带不一致", badBand})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			areas, err := NewStoryDetector().Detect(mustFrame(t, tt.img))
			if err != nil {
				t.Fatalf("不应报错: %v", err)
			}
			if areas != nil {
				t.Errorf("应未找到, 实际 %+v", areas)
			}
		})
	}
}

func TestStoryDetectRetriesAfterFailedCandidate(t *testing.T) {
	img := storyCanvas(266, 70)
	// 前一段高光对应的候选 btn=83 上边框无白色，校验失败
	paint(img, frame.Region{X: storyProbeX, Y: storyProbeY + 10, Width: 1, Height: 71}, pixel.White)

	areas, err := NewStoryDetector().Detect(mustFrame(t, img))
	if err != nil || areas == nil {
		t.Fatalf("应在后续白色段找到对话框: %v", err)
	}
	if areas.ButtonRow != 266 {
		t.Errorf("按钮行错误: %d", areas.ButtonRow)
	}
}

// choiceCanvas 绘制暗色背景与左边缘，并在指定选项位放置角色名像素
func choiceCanvas(d *ChoiceDetector, slots ...int) *image.RGBA {
	img := canvas(dark)
	img.SetRGBA(choiceEdgeProbe.X+choiceEdgeProbe.Width-1, choiceEdgeProbe.Y, pixel.White)
	for _, i := range slots {
		p := d.slots[i].charProbe
		img.SetRGBA(p.X+3, p.Y+10, color.RGBA{R: 123, G: 62, B: 24, A: 255})
	}
	return img
}

func TestChoiceDetect(t *testing.T) {
	d := NewChoiceDetector()
	img := choiceCanvas(d, 2, 4)
	img.SetRGBA(d.SlotArea(2).X, d.SlotArea(2).Y, red)

	set, err := d.Detect(mustFrame(t, img))
	if err != nil {
		t.Fatalf("检测失败: %v", err)
	}
	if set == nil {
		t.Fatal("应检测到选项")
	}
	if len(set.Slots) != 2 || set.Slots[0] != 2 || set.Slots[1] != 4 {
		t.Errorf("选项位错误: %v", set.Slots)
	}
	if want := frame.NewRegion(115, 1300, 960, 160); set.Region != want {
		t.Errorf("区域错误: %s, 期望 %s", set.Region, want)
	}
	if set.Image.RGBAAt(0, 0) != red {
		t.Error("拼接图应按下标顺序从上到下排列")
	}
	if set.Image.RGBAAt(0, 80) != dark {
		t.Errorf("第二个选项应从 y=80 开始, 实际 %v", set.Image.RGBAAt(0, 80))
	}
}

func TestChoiceSlotLayout(t *testing.T) {
	d := NewChoiceDetector()
	if d.SlotArea(4) != baseChoiceArea {
		t.Errorf("最后一个选项位应为基准位: %s", d.SlotArea(4))
	}
	if d.SlotArea(0).Y != 1300-4*180 {
		t.Errorf("第一个选项位 y 错误: %d", d.SlotArea(0).Y)
	}
}

func TestChoiceGate(t *testing.T) {
	d := NewChoiceDetector()

	tests := []struct {
		name   string
		modify func(img *image.RGBA)
	}{
		{"背景未变暗", func(img *image.RGBA) { img.SetRGBA(1102, 1900, color.RGBA{R: 200, G: 200, B: 200, A: 255}) }},
		{"第三探测区未变暗", func(img *image.RGBA) { img.SetRGBA(604, 1700, pixel.White) }},
		{"左边缘右侧不是白色", func(img *image.RGBA) { img.SetRGBA(46, 1300, dark) }},
		{"左边缘左侧不暗", func(img *image.RGBA) { img.SetRGBA(35, 1300, pixel.White) }},
		{"基准位无角色名", func(img *image.RGBA) {
			p := d.slots[4].charProbe
			img.SetRGBA(p.X+3, p.Y+10, dark)
		}},
		{"基准位图标被排除", func(img *image.RGBA) {
			p := d.slots[4].iconProbe
			img.SetRGBA(p.X+p.Width-1, p.Y, red)
			img.SetRGBA(p.X+p.Width/2, p.Y, pixel.White)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := choiceCanvas(d, 1, 4)
			tt.modify(img)
			set, err := d.Detect(mustFrame(t, img))
			if err != nil {
				t.Fatalf("不应报错: %v", err)
			}
			if set != nil {
				t.Errorf("应未找到, 实际选项位 %v", set.Slots)
			}
		})
	}
}

func TestChoiceIconWithMatchingEnds(t *testing.T) {
	d := NewChoiceDetector()
	img := choiceCanvas(d, 4)
	p := d.slots[4].iconProbe
	img.SetRGBA(p.X+p.Width/2, p.Y, pixel.White)

	set, err := d.Detect(mustFrame(t, img))
	if err != nil || set == nil {
		t.Fatalf("两端相似时中点为白色不应排除: %v", err)
	}
	if len(set.Slots) != 1 || set.Slots[0] != 4 {
		t.Errorf("选项位错误: %v", set.Slots)
	}
}

func TestChoiceCharacterTolerance(t *testing.T) {
	d := NewChoiceDetector()
	img := choiceCanvas(d)
	p := d.slots[4].charProbe
	img.SetRGBA(p.X, p.Y, color.RGBA{R: 126, G: 64, B: 22, A: 255})

	set, err := d.Detect(mustFrame(t, img))
	if err != nil {
		t.Fatal(err)
	}
	if set != nil {
		t.Error("角色名颜色差 5 不应匹配")
	}
}
