package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/zoeyai/umaocr/internal/logger"
	"github.com/zoeyai/umaocr/pkg/capture"
	"github.com/zoeyai/umaocr/pkg/config"
	"github.com/zoeyai/umaocr/pkg/engine"
	"github.com/zoeyai/umaocr/pkg/frame"
	"github.com/zoeyai/umaocr/pkg/plugin"
	"github.com/zoeyai/umaocr/pkg/snapshot"
	"github.com/zoeyai/umaocr/pkg/translate"
	"github.com/zoeyai/umaocr/pkg/vision/ocr"
	"github.com/zoeyai/umaocr/pkg/watch"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 命令行参数
	var (
		configFile  = flag.String("config", "", "配置文件路径 (默认 ~/.umaocr/config.json)")
		imagePath   = flag.String("image", "", "识别一张截图后退出")
		kindName    = flag.String("kind", "story", "配合 -image 使用: story, choices, center, full")
		language    = flag.String("lang", "", "译文语言: zh-Hans, en")
		translator  = flag.String("translator", "", "翻译器: google, openai")
		ocrBackend  = flag.String("ocr", "", "OCR 后端: paddle, grpc")
		debugDir    = flag.String("debug-dir", "", "手动识别时保存截图的目录")
		installOCR  = flag.Bool("install-ocr", false, "下载 OCR 模型后退出")
		saveConfig  = flag.Bool("save", false, "保存配置到本地")
		resetConfig = flag.Bool("reset-config", false, "删除已保存的配置后退出")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return
	}

	manager := config.GetDefaultManager()
	if *configFile != "" {
		manager = config.NewManagerWithFile(*configFile)
	}

	// 重置配置
	if *resetConfig {
		if err := manager.Clear(); err != nil {
			fmt.Printf("[ERROR] 删除配置失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[INFO] 已删除配置 %s\n", manager.GetConfigFile())
		return
	}

	// 首次运行提示
	if hint := firstRunHint(manager, *saveConfig); hint != "" {
		fmt.Printf("[INFO] %s\n", hint)
	}

	// 加载配置
	cfg, err := manager.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败: %v\n", err)
	}

	// 命令行参数优先级高于配置文件
	if *language != "" {
		cfg.Language = *language
	}
	if *translator != "" {
		cfg.Translator = *translator
	}
	if *ocrBackend != "" {
		cfg.OCR = *ocrBackend
	}
	if *debugDir != "" {
		cfg.DebugDir = *debugDir
	}

	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if err := log.SetFile(cfg.LogFile); err != nil {
		fmt.Printf("[WARN] %v\n", err)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ocrPlugin := plugin.NewOCRPlugin(plugin.DefaultDir())
	if *installOCR {
		if err := install(ctx, ocrPlugin); err != nil {
			fmt.Printf("[ERROR] 安装 OCR 模型失败: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// 创建 OCR 后端
	opts, err := ocr.LoadOptions(cfg.OCRConfig)
	if err != nil {
		fmt.Printf("[WARN] %v\n", err)
	}
	if !opts.Paddle.Available() && ocrPlugin.IsInstalled() {
		opts.Paddle = ocrPlugin.Config()
	}
	backend, err := ocr.NewWithFallback(cfg.OCR, opts)
	if err != nil {
		fmt.Printf("[ERROR] 创建 OCR 后端失败: %v\n", err)
		fmt.Println("[ERROR] 请先运行 umaocr -install-ocr 下载模型")
		os.Exit(1)
	}
	defer backend.Close()

	var engineOpts []engine.Option
	if cfg.DebugDir != "" {
		engineOpts = append(engineOpts, engine.WithSnapshotter(snapshot.NewDir(cfg.DebugDir)))
	}
	eng := engine.New(backend, engineOpts...)
	tr := translate.New(cfg.Translator, cfg.Language, cfg.TranslatorConfig)

	// 识别单张截图
	if *imagePath != "" {
		kind, err := frame.ParseKind(*kindName)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			os.Exit(1)
		}
		w := watch.New(capture.NewFile(*imagePath), eng, tr)
		ev, err := w.Trigger(ctx, kind)
		if err != nil {
			fmt.Printf("[ERROR] 识别失败: %v\n", err)
			os.Exit(1)
		}
		if ev == nil {
			fmt.Println("[INFO] 未找到文字")
			return
		}
		printEvent(*ev)
		return
	}

	// macOS 权限检查
	if runtime.GOOS == "darwin" {
		if hint := capture.PermissionHint(); hint != "" {
			fmt.Printf("[WARN] %s\n", hint)
			capture.OpenScreenRecordingSettings()
		}
	}

	win := capture.NewWindow(cfg.WindowTitle, cfg.GameArea)
	if bounds, err := win.Bounds(); err == nil {
		cfg.FitGameArea(bounds)
		win.SetGameArea(cfg.GameArea)
	} else {
		fmt.Printf("[WARN] %v，将在轮询时继续查找\n", err)
	}

	// 保存配置
	if *saveConfig {
		if err := manager.Save(cfg); err != nil {
			fmt.Printf("[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Printf("[INFO] 配置已保存到 %s\n", manager.GetConfigFile())
		}
	}

	// 打印启动信息
	fmt.Println("========================================")
	fmt.Printf("  UmaOCR v%s\n", Version)
	fmt.Println("========================================")
	fmt.Printf("窗口: %s  游戏区域: %s\n", cfg.WindowTitle, cfg.GameArea)
	fmt.Printf("OCR: %s  翻译: %s (%s)\n", backend.Name(), cfg.Translator, cfg.Language)
	fmt.Println()

	watchOpts := []watch.Option{
		watch.WithInterval(cfg.PollInterval()),
		watch.WithHandler(printEvent),
	}
	if cfg.SkipSimilarFrames {
		watchOpts = append(watchOpts, watch.WithFrameSkip(cfg.MaxFrameHashDistance))
	}
	w := watch.New(win, eng, tr, watchOpts...)

	go readCommands(ctx, w, eng)

	fmt.Println("[INFO] 输入 s/c/m/f 回车手动识别 对话/选项/中部/全屏，r 重置缓存")
	fmt.Println("[INFO] 按 Ctrl+C 退出")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("[ERROR] %v\n", err)
	}

	fmt.Println()
	fmt.Println("[INFO] 已退出")
}

// firstRunHint 配置文件不存在且未要求保存时提示 -save
func firstRunHint(m *config.Manager, save bool) string {
	if save || m.Exists() {
		return ""
	}
	return fmt.Sprintf("未找到配置文件，使用默认配置；加上 -save 可保存到 %s", m.GetConfigFile())
}

// install 下载 OCR 模型并打印进度
func install(ctx context.Context, p *plugin.OCRPlugin) error {
	if p.IsInstalled() {
		fmt.Printf("[INFO] OCR 模型已安装: %s\n", plugin.DefaultDir())
		return nil
	}
	last := -1
	p.SetProgressCallback(func(v float64) {
		if int(v)/10 != last {
			last = int(v) / 10
			fmt.Printf("[INFO] 下载进度 %.0f%%\n", v)
		}
	})
	if err := p.Install(ctx); err != nil {
		return err
	}
	fmt.Printf("[INFO] OCR 模型已安装到 %s\n", plugin.DefaultDir())
	return nil
}

// readCommands 从标准输入读取手动识别命令
func readCommands(ctx context.Context, w *watch.Watcher, eng *engine.Engine) {
	commands := map[string]frame.Kind{
		"s": frame.StoryDialogue,
		"c": frame.Choices,
		"m": frame.Center,
		"f": frame.Fullscreen,
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if cmd == "" {
			continue
		}
		if cmd == "r" {
			eng.Reset()
			fmt.Println("[INFO] 已重置缓存")
			continue
		}
		kind, ok := commands[cmd]
		if !ok {
			fmt.Printf("[WARN] 未知命令: %s\n", cmd)
			continue
		}
		ev, err := w.Trigger(ctx, kind)
		if err != nil {
			fmt.Printf("[ERROR] 手动识别失败: %v\n", err)
			continue
		}
		if ev == nil {
			fmt.Println("[INFO] 未找到文字")
		}
	}
}

// printEvent 打印原文与译文
func printEvent(ev watch.Event) {
	fmt.Printf("---- %s ----\n", ev.Kind)
	fmt.Println(ev.Text)
	switch {
	case ev.Err != nil:
		fmt.Printf("[WARN] 翻译失败: %v\n", ev.Err)
	case ev.Translation != "":
		fmt.Println(">>", strings.ReplaceAll(ev.Translation, "\n", "\n>> "))
	}
	fmt.Println()
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("UmaOCR v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("UmaOCR - 赛马娘剧情文字识别与翻译")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  umaocr [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -config string      配置文件路径")
	fmt.Println("  -image string       识别一张截图后退出")
	fmt.Println("  -kind string        配合 -image 使用: story, choices, center, full (默认 story)")
	fmt.Println("  -lang string        译文语言: zh-Hans, en")
	fmt.Println("  -translator string  翻译器: google, openai")
	fmt.Println("  -ocr string         OCR 后端: paddle, grpc")
	fmt.Println("  -debug-dir string   手动识别时保存截图的目录")
	fmt.Println("  -install-ocr        下载 OCR 模型后退出")
	fmt.Println("  -save               保存配置到本地")
	fmt.Println("  -reset-config       删除已保存的配置后退出")
	fmt.Println("  -version            显示版本信息")
	fmt.Println("  -help               显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 首次使用先下载模型")
	fmt.Println("  umaocr -install-ocr")
	fmt.Println()
	fmt.Println("  # 监视游戏窗口并翻译成中文，保存配置")
	fmt.Println("  umaocr -lang zh-Hans -save")
	fmt.Println()
	fmt.Println("  # 识别截图中的选项")
	fmt.Println("  umaocr -image screenshot.png -kind choices")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}
