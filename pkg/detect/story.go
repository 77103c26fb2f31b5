package detect

import (
	"image/color"

	"github.com/zoeyai/umaocr/internal/logger"
	"github.com/zoeyai/umaocr/pkg/frame"
	"github.com/zoeyai/umaocr/pkg/pixel"
)

// DialogueAreas 剧情对话框检测结果
type DialogueAreas struct {
	// Dialogue 对话正文区域
	Dialogue frame.Region `json:"dialogue"`
	// Speaker 说话人名牌区域，旁白时为 nil
	Speaker *frame.Region `json:"speaker,omitempty"`
	// ButtonRow 探测条内的按钮行（吸附后）
	ButtonRow int `json:"button_row"`
}

// StoryDetector 剧情对话框检测器，无状态
type StoryDetector struct {
	log *logger.Logger
}

// NewStoryDetector 创建剧情对话框检测器
func NewStoryDetector() *StoryDetector {
	return &StoryDetector{log: logger.Named("story")}
}

// ProbeStrip 返回纵向探测条区域
func ProbeStrip() frame.Region {
	return frame.Region{X: storyProbeX, Y: storyProbeY, Width: 1, Height: storyProbeHeight}
}

// Detect 查找对话框，未找到时返回 nil, nil
func (d *StoryDetector) Detect(f *frame.Frame) (*DialogueAreas, error) {
	strip := ProbeStrip()
	column, err := f.Column(strip.X, strip.Y, strip.Height)
	if err != nil {
		return nil, err
	}

	btn, err := d.findButtonRow(f, column)
	if err != nil || btn == 0 {
		return nil, err
	}

	if btn > snapLow && btn < snapHigh {
		btn = snapRow
	}

	base := strip.Y + btn

	// 图标区域出现亮色说明是自动播放等其他界面
	icon, err := f.Column(iconProbeX, base-iconProbeHeight, iconProbeHeight)
	if err != nil {
		return nil, err
	}
	if anyWhite(icon) {
		d.log.Debug("按钮行 %d 处检测到图标，忽略", btn)
		return nil, nil
	}

	top := base - boxTopOffset
	areas := &DialogueAreas{
		Dialogue:  frame.Region{X: dialogueX, Y: top + dialogueOffset, Width: dialogueWidth, Height: dialogueHeight},
		ButtonRow: btn,
	}

	nameplate, err := f.Row(speakerProbeX, top+speakerProbeOffset, speakerProbeWidth)
	if err != nil {
		return nil, err
	}
	if !anyWhite(nameplate) {
		areas.Speaker = &frame.Region{X: speakerX, Y: base - speakerOffset, Width: speakerWidth, Height: speakerHeight}
	}

	d.log.Debug("检测到对话框: 按钮行=%d 正文=%s 说话人=%v", btn, areas.Dialogue, areas.Speaker != nil)
	return areas, nil
}

// findButtonRow 扫描探测条，返回第一个通过校验的按钮行，0 表示未找到
func (d *StoryDetector) findButtonRow(f *frame.Frame, column []color.RGBA) (int, error) {
	whiteCount := 0
	for h, c := range column {
		if pixel.IsWhite(c) {
			whiteCount++
			continue
		}

		if whiteCount > minWhiteRun {
			btn := h + buttonRowGap
			if btn >= len(column) {
				return 0, nil
			}
			ok, err := d.validate(f, btn)
			if err != nil {
				return 0, err
			}
			if ok {
				return btn, nil
			}
			d.log.Debug("候选按钮行 %d 校验失败", btn)
		}
		whiteCount = 0
	}
	return 0, nil
}

// validate 校验按钮色带与对话框上边框
func (d *StoryDetector) validate(f *frame.Frame, btn int) (bool, error) {
	row := storyProbeY + btn
	band, err := f.Row(buttonBandX, row, buttonBandWidth)
	if err != nil {
		return false, err
	}
	btnColor := band[0]
	for _, c := range band {
		if !pixel.Similar(c, btnColor) {
			return false, nil
		}
	}

	top, err := f.Column(storyProbeX, row-boxTopOffset, boxTopProbeHeight)
	if err != nil {
		return false, err
	}
	if !pixel.Similar(top[0], btnColor) && !pixel.Similar(top[1], btnColor) {
		return false, nil
	}
	return pixel.IsWhite(top[boxTopWhiteIndex]), nil
}

func anyWhite(cs []color.RGBA) bool {
	for _, c := range cs {
		if pixel.IsWhite(c) {
			return true
		}
	}
	return false
}
