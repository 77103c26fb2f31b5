package translate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultGlossaryDir 术语表目录，文件名为 <语言>.json
const DefaultGlossaryDir = "Glossaries"

// Glossary 日文到译文的固定译名
type Glossary map[string]string

// LoadGlossary 读取 <dir>/<lang>.json，文件不存在时返回空表
func LoadGlossary(dir, lang string) (Glossary, error) {
	data, err := os.ReadFile(filepath.Join(dir, lang+".json"))
	if os.IsNotExist(err) {
		return Glossary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取术语表失败: %w", err)
	}
	g := Glossary{}
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("解析术语表失败: %w", err)
	}
	return g, nil
}

// Hints 文本中出现的术语，按原文排序，每行 "原文 => 译文"
func (g Glossary) Hints(text string) string {
	var keys []string
	for k := range g {
		if k != "" && strings.Contains(text, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s => %s\n", k, g[k])
	}
	return sb.String()
}
