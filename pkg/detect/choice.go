package detect

import (
	"image"

	"github.com/zoeyai/umaocr/internal/logger"
	"github.com/zoeyai/umaocr/pkg/frame"
	"github.com/zoeyai/umaocr/pkg/pixel"
)

// ChoiceSet 选项检测结果
type ChoiceSet struct {
	// Image 已出现选项的纵向拼接图
	Image *image.RGBA
	// Region 以基准选项位为原点、拼接图为尺寸的区域，用作缓存键
	Region frame.Region
	// Slots 已出现的选项位下标，升序
	Slots []int
}

// choiceSlot 单个选项位的采样区域
type choiceSlot struct {
	area      frame.Region
	iconProbe frame.Region
	charProbe frame.Region
}

// ChoiceDetector 选项检测器，无状态
type ChoiceDetector struct {
	slots [choiceSlots]choiceSlot
	log   *logger.Logger
}

// NewChoiceDetector 创建选项检测器
func NewChoiceDetector() *ChoiceDetector {
	d := &ChoiceDetector{log: logger.Named("choice")}
	for i := range d.slots {
		shift := -choiceSlotStep * (choiceSlots - 1 - i)
		d.slots[i] = choiceSlot{
			area:      baseChoiceArea.Offset(0, shift),
			iconProbe: baseChoiceIconProbe.Offset(0, shift),
			charProbe: baseCharacterProbe.Offset(0, shift),
		}
	}
	return d
}

// SlotArea 返回第 i 个选项位的区域
func (d *ChoiceDetector) SlotArea(i int) frame.Region {
	return d.slots[i].area
}

// Detect 拼接当前出现的选项，未找到时返回 nil, nil
func (d *ChoiceDetector) Detect(f *frame.Frame) (*ChoiceSet, error) {
	ok, err := d.gate(f)
	if err != nil || !ok {
		return nil, err
	}

	var (
		crops []*image.RGBA
		slots []int
	)
	for i, s := range d.slots {
		populated, err := d.checkSlot(f, s)
		if err != nil {
			return nil, err
		}
		if !populated {
			continue
		}
		img, err := f.Crop(s.area)
		if err != nil {
			return nil, err
		}
		crops = append(crops, img)
		slots = append(slots, i)
	}
	if len(crops) == 0 {
		return nil, nil
	}

	img := frame.VStack(crops...)
	b := img.Bounds()
	d.log.Debug("检测到 %d 个选项: %v", len(slots), slots)
	return &ChoiceSet{
		Image:  img,
		Region: frame.Region{X: baseChoiceArea.X, Y: baseChoiceArea.Y, Width: b.Dx(), Height: b.Dy()},
		Slots:  slots,
	}, nil
}

// gate 背景变暗、基准选项左边缘由暗转白且基准选项位存在
func (d *ChoiceDetector) gate(f *frame.Frame) (bool, error) {
	for _, r := range choiceDarkProbes {
		cs, err := f.Pixels(r)
		if err != nil {
			return false, err
		}
		for _, c := range cs {
			if pixel.Sum(c) > darkSumLimit {
				return false, nil
			}
		}
	}

	edge, err := f.Row(choiceEdgeProbe.X, choiceEdgeProbe.Y, choiceEdgeProbe.Width)
	if err != nil {
		return false, err
	}
	if !pixel.IsDark(edge[0]) || !pixel.IsWhite(edge[len(edge)-1]) {
		return false, nil
	}

	return d.checkSlot(f, d.slots[choiceSlots-1])
}

// checkSlot 判断选项位是否有选项
func (d *ChoiceDetector) checkSlot(f *frame.Frame, s choiceSlot) (bool, error) {
	icon, err := f.Row(s.iconProbe.X, s.iconProbe.Y, s.iconProbe.Width)
	if err != nil {
		return false, err
	}
	first, last, mid := icon[0], icon[len(icon)-1], icon[len(icon)/2]
	if !pixel.Similar(first, last) && pixel.Similar(mid, pixel.White) {
		return false, nil
	}

	cs, err := f.Pixels(s.charProbe)
	if err != nil {
		return false, err
	}
	for _, c := range cs {
		if pixel.IsSimilar(c, characterColor, characterTolerance) {
			return true, nil
		}
	}
	return false, nil
}
