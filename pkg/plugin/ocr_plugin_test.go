package plugin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInstall(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		w.Write([]byte("data:" + r.URL.Path))
	}))
	defer srv.Close()

	p := NewOCRPlugin(t.TempDir())
	p.SetRepoBase(srv.URL)

	var last float64
	p.SetProgressCallback(func(v float64) { last = v })

	if p.IsInstalled() {
		t.Fatal("空目录不应视为已安装")
	}
	if err := p.Install(context.Background()); err != nil {
		t.Fatalf("安装失败: %v", err)
	}

	status := p.GetStatus()
	if !status.Installed || status.Downloading {
		t.Errorf("安装后状态错误: %+v", status)
	}
	if last != 100 || status.Progress != 100 {
		t.Errorf("进度应为 100, 实际 %.1f / %.1f", last, status.Progress)
	}
	if len(requested) != 4 || !strings.HasPrefix(requested[0], "/lib/") {
		t.Errorf("请求顺序错误: %v", requested)
	}

	data, err := os.ReadFile(status.Config.DictPath)
	if err != nil || string(data) != "data:/paddle_weights/dict.txt" {
		t.Errorf("字典内容错误: %q, %v", data, err)
	}
	if _, err := os.Stat(status.Config.DictPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("临时文件应已重命名")
	}
}

func TestInstallHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	p := NewOCRPlugin(t.TempDir())
	p.SetRepoBase(srv.URL)
	if err := p.Install(context.Background()); err == nil {
		t.Fatal("404 应安装失败")
	}
	if p.IsInstalled() || p.GetStatus().Downloading {
		t.Error("失败后不应视为已安装或下载中")
	}
}

func TestInstallCancelled(t *testing.T) {
	p := NewOCRPlugin(t.TempDir())
	p.SetRepoBase("http://127.0.0.1:1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Install(ctx); err == nil {
		t.Fatal("取消的上下文应返回错误")
	}
}

func TestUninstall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ocr")
	p := NewOCRPlugin(dir)
	os.MkdirAll(filepath.Join(dir, "lib"), 0755)
	if err := p.Uninstall(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("卸载后目录应被删除")
	}
}

func TestDefaultDir(t *testing.T) {
	if !strings.HasSuffix(DefaultDir(), filepath.Join(".umaocr", "plugins", "ocr")) {
		t.Errorf("默认目录错误: %s", DefaultDir())
	}
}
