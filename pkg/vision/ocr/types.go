package ocr

import (
	"os"
	"path/filepath"
	"runtime"
)

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OcrResult 单行识别结果
type OcrResult struct {
	// Text 识别的文字内容
	Text string `json:"text"`
	// Confidence 识别置信度 (0-1)
	Confidence float64 `json:"confidence"`
	// Position 文字中心位置
	Position Point `json:"position"`
	// Box 左上与右下角
	Box [2]Point `json:"box"`
}

// Config PaddleOCR 模型配置
type Config struct {
	// OnnxRuntimeLibPath ONNX Runtime 动态库路径
	OnnxRuntimeLibPath string `json:"onnx_runtime_lib_path"`
	// DetModelPath 检测模型路径
	DetModelPath string `json:"det_model_path"`
	// RecModelPath 识别模型路径
	RecModelPath string `json:"rec_model_path"`
	// DictPath 字典文件路径
	DictPath string `json:"dict_path"`
}

// Available 所有模型文件是否存在
func (c Config) Available() bool {
	return fileExists(c.OnnxRuntimeLibPath) &&
		fileExists(c.DetModelPath) &&
		fileExists(c.RecModelPath) &&
		fileExists(c.DictPath)
}

// DefaultConfig 在可执行文件目录与当前目录下查找模型
func DefaultConfig() Config {
	return Config{
		OnnxRuntimeLibPath: defaultOnnxRuntimePath(),
		DetModelPath:       defaultModelPath("det.onnx"),
		RecModelPath:       defaultModelPath("rec.onnx"),
		DictPath:           defaultModelPath("dict.txt"),
	}
}

// OnnxRuntimeLibName 当前平台的 ONNX Runtime 库文件名
func OnnxRuntimeLibName() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "onnxruntime_" + runtime.GOARCH + ".dylib"
	default:
		return "onnxruntime_" + runtime.GOARCH + ".so"
	}
}

func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

func defaultOnnxRuntimePath() string {
	name := OnnxRuntimeLibName()
	paths := []string{
		filepath.Join(executableDir(), "models", "lib", name),
		filepath.Join(executableDir(), name),
		filepath.Join("models", "lib", name),
	}
	return firstExisting(paths)
}

func defaultModelPath(filename string) string {
	paths := []string{
		filepath.Join(executableDir(), "models", "paddle_weights", filename),
		filepath.Join("models", "paddle_weights", filename),
	}
	return firstExisting(paths)
}

// firstExisting 返回第一个存在的路径，都不存在时返回第一个
func firstExisting(paths []string) string {
	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[0]
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
