// Package detect 在规范尺寸画面中定位剧情对话框与选项列表
package detect

import (
	"image/color"

	"github.com/zoeyai/umaocr/pkg/frame"
)

// 剧情对话框检测常量
const (
	// storyProbeX 纵向探测条所在列（画面宽度的 2/3）
	storyProbeX = frame.Width / 3 * 2
	// storyProbeY 探测条起点（距底部 500）
	storyProbeY = frame.Height - 500
	// storyProbeHeight 探测条高度
	storyProbeHeight = 300

	// minWhiteRun 按钮高光白色连续像素需超过该长度
	minWhiteRun = 65
	// buttonRowGap 白色段结束后到按钮行的距离
	buttonRowGap = 2

	// 按钮色带
	buttonBandX     = frame.Width/2 - 200
	buttonBandWidth = 400

	// 按钮行到对话框上边框的距离
	boxTopOffset = 332
	// 上边框探测条高度，第 5 个像素应为白色
	boxTopProbeHeight = 6
	boxTopWhiteIndex  = 5

	// 落在 (snapLow, snapHigh) 开区间内的按钮行会被吸附到 snapRow
	snapLow  = 263
	snapHigh = 268
	snapRow  = 266

	// 自动播放等图标探测条
	iconProbeX      = frame.Width - 155
	iconProbeHeight = 15

	// 对话正文区域
	dialogueX      = 85
	dialogueOffset = 55
	dialogueWidth  = 965
	dialogueHeight = 235

	// 说话人名牌
	speakerProbeX      = 140
	speakerProbeOffset = 40
	speakerProbeWidth  = 15
	speakerX           = 100
	speakerOffset      = 333 + 20
	speakerWidth       = 450
	speakerHeight      = 60
)

// 选项检测常量
const (
	// choiceSlots 最多 5 个选项位
	choiceSlots = 5
	// choiceSlotStep 相邻选项位的纵向间距
	choiceSlotStep = 180

	// darkSumLimit 遮罩探测像素的 R+G+B 上限
	darkSumLimit = 127 * 3

	// characterTolerance 角色名文字颜色容差
	characterTolerance = 5
)

var (
	// 背景变暗探测区
	choiceDarkProbes = []frame.Region{
		{X: 1100, Y: 1900, Width: 5, Height: 1},
		{X: 100, Y: 1900, Width: 5, Height: 1},
		{X: 600, Y: 1700, Width: 5, Height: 1},
	}
	// 基准选项左侧由暗到白的过渡
	choiceEdgeProbe = frame.Region{X: 35, Y: 1300, Width: 12, Height: 1}

	// 基准选项位（最后一个，index 4）
	baseChoiceArea      = frame.Region{X: 115, Y: 1300, Width: 960, Height: 80}
	baseChoiceIconProbe = frame.Region{X: 62, Y: 1342, Width: 40, Height: 1}
	baseCharacterProbe  = frame.Region{X: 115 + 50 - 5, Y: 1300 + 24, Width: 10, Height: 30}

	// characterColor 选项中角色名文字的颜色
	characterColor = color.RGBA{R: 121, G: 64, B: 22, A: 255}
)
