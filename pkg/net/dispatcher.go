package net

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrAuthRejected 重试一次后远端仍返回 401，作为硬错误上抛
var ErrAuthRejected = errors.New("remote rejected authorization after retry")

// AuthProvider 定义"提供授权"的行为标准
type AuthProvider interface {
	// Authorization 返回可用的 Authorization 头 (如 "Bearer xxx")
	// 实现方负责在 token 临期时先行续期，绝不返回过期 token
	Authorization(ctx context.Context) (string, error)

	// ForceReauthorize 无条件重新认证
	// 业务层实现需在此方法中丢弃当前 token 并重走认证/刷新流程
	ForceReauthorize(ctx context.Context) error
}

// Dispatcher 网络调度器 (通用组件)
type Dispatcher interface {
	// Send 发送 HTTP 请求
	// 自动注入授权头；收到 401 时强制重新认证并重试一次，
	// 第二次 401 返回 ErrAuthRejected，不再重试
	Send(ctx context.Context, req *http.Request) (*http.Response, error)
}

// authDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type authDispatcher struct {
	provider AuthProvider
	client   *http.Client
}

var _ Dispatcher = (*authDispatcher)(nil)

// NewDispatcher 创建调度器
// timeout 为单次请求的硬超时，iFood 接口按官方建议给 30s
func NewDispatcher(provider AuthProvider, timeout time.Duration) Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &authDispatcher{
		provider: provider,
		client:   &http.Client{Timeout: timeout},
	}
}

// Send 发送 HTTP 请求 (自动处理授权与 401 重试)
func (d *authDispatcher) Send(ctx context.Context, req *http.Request) (*http.Response, error) {
	// 每次尝试最多发 2 次：首发 + 强制重认证后的一次重试
	for attempt := 0; attempt < 2; attempt++ {
		// 1. 通过接口回调获取授权头 (续期逻辑在业务层实现)
		auth, err := d.provider.Authorization(ctx)
		if err != nil {
			return nil, err
		}

		// 2. 克隆请求，避免重试时 Body 已被读掉
		attemptReq, err := cloneRequest(ctx, req)
		if err != nil {
			return nil, err
		}
		attemptReq.Header.Set("Authorization", auth)

		// 3. 发送请求
		resp, err := d.client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		// 非 401 一律交给调用方处理 (包括 404 / 202 等业务结果)
		if resp.StatusCode != http.StatusUnauthorized {
			return resp, nil
		}

		resp.Body.Close()

		// 首次 401：回调业务层强制重新认证，然后重试本请求
		if attempt == 0 {
			if err := d.provider.ForceReauthorize(ctx); err != nil {
				return nil, err
			}
			continue
		}
	}

	// 第二次 401
	return nil, ErrAuthRejected
}

// cloneRequest 基于 GetBody 重建请求，保证重试时 Body 可重读
func cloneRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	cloned := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		cloned.Body = body
	}
	return cloned, nil
}
