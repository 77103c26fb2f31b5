package translate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestGoogleTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "ja" || q.Get("tl") != "zh-CN" || q.Get("dt") != "t" {
			t.Errorf("查询参数错误: %s", r.URL.RawQuery)
		}
		if q.Get("q") != "こんにちは\n世界" {
			t.Errorf("原文错误: %q", q.Get("q"))
		}
		w.Write([]byte(`[[["你好\n","こんにちは\n",null,null,10],[" 世界 ","世界",null,null,10]],null,"ja"]`))
	}))
	defer srv.Close()

	g := NewGoogle("zh-Hans")
	g.SetEndpoint(srv.URL)

	got, err := g.Translate(context.Background(), "こんにちは\n世界")
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if got != "你好\n世界" {
		t.Errorf("译文错误: %q", got)
	}
}

func TestGoogleBlankInput(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	g := NewGoogle("en")
	g.SetEndpoint(srv.URL)
	for _, in := range []string{"", "  ", "\n\t"} {
		got, err := g.Translate(context.Background(), in)
		if err != nil || got != "" {
			t.Errorf("空白输入应返回空: %q, %v", got, err)
		}
	}
	if calls != 0 {
		t.Errorf("空白输入不应发出请求, 实际 %d 次", calls)
	}
}

func TestGoogleErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"HTTP 错误", http.StatusTooManyRequests, ""},
		{"非 JSON", http.StatusOK, "<html>"},
		{"空数组", http.StatusOK, "[]"},
		{"没有片段", http.StatusOK, "[[],null,\"ja\"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := NewGoogle("en")
			g.SetEndpoint(srv.URL)
			if _, err := g.Translate(context.Background(), "テスト"); err == nil {
				t.Error("应返回错误")
			}
		})
	}
}

func TestParseGoogleEmpty(t *testing.T) {
	if _, err := parseGoogle([]byte("[[]]")); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("应返回 ErrEmptyResponse, 实际 %v", err)
	}
}

func TestGlossary(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"トレーナー":"Trainer","スペシャルウィーク":"Special Week","":"x"}`), 0600)

	g, err := LoadGlossary(dir, "en")
	if err != nil {
		t.Fatalf("读取术语表失败: %v", err)
	}
	hints := g.Hints("スペシャルウィークとトレーナーさん")
	want := "スペシャルウィーク => Special Week\nトレーナー => Trainer\n"
	if hints != want {
		t.Errorf("术语提示错误:\n%q\n期望\n%q", hints, want)
	}
	if g.Hints("なにもない") != "" {
		t.Error("未出现的术语不应提示")
	}

	missing, err := LoadGlossary(dir, "zh-Hans")
	if err != nil || len(missing) != 0 {
		t.Errorf("缺少术语表应返回空表: %v, %v", missing, err)
	}

	os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0600)
	if _, err := LoadGlossary(dir, "bad"); err == nil {
		t.Error("损坏的术语表应报错")
	}
}

// chatServer 模拟对话补全接口，记录收到的系统提示
func chatServer(t *testing.T, reply string, system *string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("请求路径错误: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("鉴权头错误: %s", r.Header.Get("Authorization"))
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("解析请求失败: %v", err)
		}
		if len(req.Messages) == 2 {
			*system = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]interface{}{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}, "finish_reason": "stop"},
			},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
}

func TestOpenAITranslate(t *testing.T) {
	var system string
	srv := chatServer(t, "  Special Week\nGood morning, Trainer!  ", &system)
	defer srv.Close()

	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"スペシャルウィーク":"Special Week"}`), 0600)

	tr, err := NewOpenAI(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", GlossaryDir: dir}, "en")
	if err != nil {
		t.Fatal(err)
	}
	got, err := tr.Translate(context.Background(), "スペシャルウィーク\nおはようございます、トレーナーさん！")
	if err != nil {
		t.Fatalf("翻译失败: %v", err)
	}
	if got != "Special Week\nGood morning, Trainer!" {
		t.Errorf("译文错误: %q", got)
	}
	if !strings.Contains(system, "English") || !strings.Contains(system, "スペシャルウィーク => Special Week") {
		t.Errorf("系统提示缺少语言或术语: %q", system)
	}
}

func TestNewFallsBackToGoogle(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte(`{"api_key":""}`), 0600)
	valid := filepath.Join(dir, "openai.json")
	os.WriteFile(valid, []byte(`{"api_key":"k","glossary_dir":"`+filepath.ToSlash(dir)+`"}`), 0600)

	tests := []struct {
		name, translator, config string
		openai                   bool
	}{
		{"默认", "", "", false},
		{"google", " Google ", "", false},
		{"未知", "azure", valid, false},
		{"缺少配置", "openai", filepath.Join(dir, "missing.json"), false},
		{"缺少密钥", "openai", empty, false},
		{"有效配置", "OpenAI", valid, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.translator, "en", tt.config)
			_, isOpenAI := tr.(*OpenAI)
			_, isGoogle := tr.(*Google)
			if isOpenAI != tt.openai || isGoogle == tt.openai {
				t.Errorf("翻译器类型错误: %T", tr)
			}
		})
	}
}
