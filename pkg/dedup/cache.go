// Package dedup 判断某个画面区域自上次识别后是否发生变化
package dedup

import (
	"image"

	"github.com/zoeyai/umaocr/pkg/frame"
	"github.com/zoeyai/umaocr/pkg/pixel"
)

// 缩略图缩小倍数
const (
	ThumbnailDiv       = 12
	ChoiceThumbnailDiv = 2
)

// entry 每种类型的缓存，present 为 false 时表示尚未记录
type entry struct {
	thumbnail *image.RGBA
	region    frame.Region
	present   bool
}

// Decision Check 的结果，Changed 时可交给 Commit 记录
type Decision struct {
	Kind      frame.Kind
	Region    frame.Region
	Thumbnail *image.RGBA
	Changed   bool
}

// Cache 按类型记录上次识别的区域与缩略图
//
// 非并发安全，由调用方串行使用。
type Cache struct {
	entries [frame.NumKinds]entry
}

// NewCache 创建空缓存
func NewCache() *Cache {
	return &Cache{}
}

// ThumbnailOf 按类型计算缩略图
func ThumbnailOf(kind frame.Kind, img image.Image) *image.RGBA {
	div := ThumbnailDiv
	if kind == frame.Choices {
		div = ChoiceThumbnailDiv
	}
	return pixel.Thumbnail(img, div)
}

// Check 判断区域内容是否变化，不修改缓存
//
// 仅当未强制、类型可比较、区域相同且缩略图近似时视为未变化。
func (c *Cache) Check(kind frame.Kind, img image.Image, region frame.Region, force, eligible bool) Decision {
	d := Decision{Kind: kind, Region: region, Thumbnail: ThumbnailOf(kind, img), Changed: true}
	if force || !eligible || !kind.Valid() {
		return d
	}
	e := c.entries[kind]
	if e.present && e.region == region && pixel.IsSimilarThumbnail(d.Thumbnail, e.thumbnail) {
		d.Changed = false
		d.Thumbnail = nil
	}
	return d
}

// Commit 记录一次已完成识别的结果，未变化的决定会被忽略
func (c *Cache) Commit(d Decision) {
	if !d.Changed || !d.Kind.Valid() {
		return
	}
	c.entries[d.Kind] = entry{thumbnail: d.Thumbnail, region: d.Region, present: true}
}

// CheckAndUpdate Check 后在变化时立即 Commit，返回是否变化
//
// 识别引擎不用它，而是在识别成功后才 Commit；这里供不需要两阶段的调用方使用。
func (c *Cache) CheckAndUpdate(kind frame.Kind, img image.Image, region frame.Region, force, eligible bool) bool {
	d := c.Check(kind, img, region, force, eligible)
	c.Commit(d)
	return d.Changed
}

// Region 返回类型上次记录的区域，用于诊断
func (c *Cache) Region(kind frame.Kind) (frame.Region, bool) {
	if !kind.Valid() {
		return frame.Region{}, false
	}
	e := c.entries[kind]
	return e.region, e.present
}

// Reset 清空所有记录
func (c *Cache) Reset() {
	c.entries = [frame.NumKinds]entry{}
}
