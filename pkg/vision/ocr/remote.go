package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/zoeyai/umaocr/internal/logger"
)

// ExtractTextMethod 远程识别服务的一元调用
const ExtractTextMethod = "/umaocr.ocr.v1.Recognizer/ExtractText"

// RemoteConfig 远程识别服务配置
type RemoteConfig struct {
	// Address 服务地址 host:port
	Address string `json:"address"`
	// TimeoutMs 单次调用超时
	TimeoutMs int `json:"timeout_ms"`
}

// Remote 通过 gRPC 调用外部识别服务
//
// 请求为 {image: base64 PNG, combine_lines: bool}，响应为 {text: string}。
type Remote struct {
	conn    *grpc.ClientConn
	timeout time.Duration
	log     *logger.Logger
}

// NewRemote 连接远程识别服务
func NewRemote(cfg RemoteConfig, opts ...grpc.DialOption) (*Remote, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("远程 OCR 地址为空")
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("连接远程 OCR 失败: %w", err)
	}

	timeout := 10 * time.Second
	if cfg.TimeoutMs > 0 {
		timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	return &Remote{conn: conn, timeout: timeout, log: logger.Named("ocr.remote")}, nil
}

// Name 后端名称
func (r *Remote) Name() string {
	return BackendGRPC
}

// ExtractText 发送图像并返回服务端的识别文字
func (r *Remote) ExtractText(ctx context.Context, img image.Image, combineLines bool) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("编码图像失败: %w", err)
	}

	req, err := structpb.NewStruct(map[string]interface{}{
		"image":         base64.StdEncoding.EncodeToString(buf.Bytes()),
		"combine_lines": combineLines,
	})
	if err != nil {
		return "", fmt.Errorf("构造请求失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	reply := &structpb.Struct{}
	if err := r.conn.Invoke(ctx, ExtractTextMethod, req, reply); err != nil {
		r.log.LogEvent("OCR", false, time.Since(start), err.Error())
		return "", fmt.Errorf("远程 OCR 调用失败: %w", err)
	}

	text := reply.GetFields()["text"].GetStringValue()
	r.log.LogEvent("OCR", true, time.Since(start), fmt.Sprintf("%d 字", len([]rune(text))))
	return text, nil
}

// Close 关闭连接
func (r *Remote) Close() error {
	return r.conn.Close()
}
