package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/zeromicro/go-zero/rest/httpc"

	"rhizo-cli/internal/consts"
	"rhizo-cli/internal/logic/domain"
	"rhizo-cli/internal/pkg/logger"
	"rhizo-cli/internal/tools"
)

// ErrPayloadTooLarge 后端返回 413，或本地预检 gzip 后超限
var ErrPayloadTooLarge = tools.ErrPayloadTooLarge

var ErrInvalidResponse = errors.New("ingest response is not valid UTF-8")

// IngestStatusError 非 200 且非 413 的响应，原样带出状态码
type IngestStatusError struct {
	StatusCode int
	Body       string
}

func (e *IngestStatusError) Error() string {
	return fmt.Sprintf("ingest failed with status %d", e.StatusCode)
}

type IngestOption struct {
	Endpoint string
	Timeout  time.Duration
}

// IngestService 把 {路由元数据, WASM 源码} 上传到托管后端
type IngestService struct {
	endpoint string
	http     httpc.Service
}

func NewIngestService(opt IngestOption) *IngestService {
	endpoint := opt.Endpoint
	if endpoint == "" {
		endpoint = consts.DefaultIngestEndpoint
	}
	timeout := opt.Timeout
	if timeout <= 0 {
		timeout = consts.DefaultIngestTimeout
	}
	return &IngestService{
		endpoint: endpoint,
		http:     httpc.NewServiceWithClient("ingest", &http.Client{Timeout: timeout}),
	}
}

func (s *IngestService) Endpoint() string {
	return s.endpoint
}

// Upload 先做本地 gzip 大小预检，再 POST borsh 编码的部署包；成功时返回后端响应文本
func (s *IngestService) Upload(ctx context.Context, deploy domain.RouteDeploy) (string, error) {
	if _, err := tools.CheckModuleSize(deploy.Source); err != nil {
		return "", err
	}
	body, err := deploy.Marshal()
	if err != nil {
		return "", fmt.Errorf("encode route deploy: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build ingest request: %w", err)
	}
	// 后端按该 content-type 接收，内容实际是 borsh 字节
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.http.DoRequest(req)
	if err != nil {
		return "", fmt.Errorf("ingest request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ingest response: %w", err)
	}
	logger.Infof("[IngestService] POST %s 状态码: %d, 上传: %d 字节, 耗时: %v", s.endpoint, resp.StatusCode, len(body), time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		if !utf8.Valid(data) {
			return "", ErrInvalidResponse
		}
		return string(data), nil
	case http.StatusRequestEntityTooLarge:
		return "", ErrPayloadTooLarge
	default:
		return "", &IngestStatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
}
