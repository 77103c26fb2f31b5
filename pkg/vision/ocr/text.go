package ocr

import (
	"sort"
	"strings"
)

// lineFixes 日文识别结果的常见误识别修正，依次替换
var lineFixes = [][2]string{
	{" ", ""},
	{"?", "？"},
	{"!", "！"},
	{"/", "ノ"},
	{"・・・・・・", "……"},
	{"・・・", "…"},
	{"・・", "…"},
}

// NormalizeLine 修正单行文字
func NormalizeLine(s string) string {
	for _, f := range lineFixes {
		s = strings.ReplaceAll(s, f[0], f[1])
	}
	s = strings.Trim(s, "0")
	return strings.Trim(s, "|")
}

// JoinLines 按从上到下、从左到右排序后拼接
//
// 先按中心点纵坐标分行，中心点落在当前行纵向范围内的框并入该行，
// 行内再按左边界排序。combine 为 true 时直接连接，否则每行一个换行。
func JoinLines(results []OcrResult, combine bool) string {
	var sb strings.Builder
	for _, row := range groupRows(results) {
		for _, r := range row {
			line := NormalizeLine(r.Text)
			if line == "" {
				continue
			}
			if sb.Len() > 0 && !combine {
				sb.WriteByte('\n')
			}
			sb.WriteString(line)
		}
	}
	return sb.String()
}

// groupRows 分行，结果与输入顺序无关
func groupRows(results []OcrResult) [][]OcrResult {
	sorted := make([]OcrResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Position.Y != b.Position.Y {
			return a.Position.Y < b.Position.Y
		}
		if a.Box[0].X != b.Box[0].X {
			return a.Box[0].X < b.Box[0].X
		}
		return a.Text < b.Text
	})

	var (
		rows        [][]OcrResult
		top, bottom int
	)
	for _, r := range sorted {
		n := len(rows)
		if n > 0 && r.Position.Y >= top && r.Position.Y <= bottom {
			rows[n-1] = append(rows[n-1], r)
			if r.Box[1].Y > bottom {
				bottom = r.Box[1].Y
			}
			continue
		}
		rows = append(rows, []OcrResult{r})
		top, bottom = r.Box[0].Y, r.Box[1].Y
	}

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].Box[0].X < row[j].Box[0].X
		})
	}
	return rows
}
