package net

import (
	"context"
	"io"
	"net/http"
)

// BuildIfoodRequest 通用 iFood 请求构建器
// 适用方：IfoodService 的全部订单/轮询/门店/分拣操作
// 职责：统一封装标准头 (Accept, Content-Type)
// 注意：Authorization 头由 Dispatcher 注入，这里不处理鉴权
func BuildIfoodRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// BuildIfoodGetRequest 构建 iFood GET 请求
func BuildIfoodGetRequest(ctx context.Context, url string) (*http.Request, error) {
	return BuildIfoodRequest(ctx, http.MethodGet, url, nil)
}
