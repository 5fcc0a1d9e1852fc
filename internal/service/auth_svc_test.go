package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"ifood_partner_v1/internal/config"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/pkg/utils"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupAuthTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.CredentialSnapshot{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func authTestConfig(baseURL, grantType string) *config.Config {
	return &config.Config{
		IfoodBaseURL: baseURL,
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		GrantType:    grantType,
	}
}

// tokenServer 模拟 iFood Token 端点
// handler 返回 (状态码, 响应体)；记录收到的表单
func tokenServer(t *testing.T, handler func(form map[string]string) (int, any)) (*httptest.Server, *int32) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != TokenURL {
			t.Errorf("path = %s, want %s", r.URL.Path, TokenURL)
		}
		atomic.AddInt32(&calls, 1)

		r.ParseForm()
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}

		status, body := handler(form)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	return server, &calls
}

// ==================== 单元测试 ====================

func TestAuthService_ClientCredentialsGrant(t *testing.T) {
	server, calls := tokenServer(t, func(form map[string]string) (int, any) {
		if form["grantType"] != model.GrantClientCredentials {
			t.Errorf("grantType = %s, want client_credentials", form["grantType"])
		}
		if form["clientId"] != "client-1" || form["clientSecret"] != "secret-1" {
			t.Errorf("凭证未正确下发: %v", form)
		}
		return 200, map[string]any{"accessToken": "tok-1", "type": "bearer", "expiresIn": 21600}
	})
	defer server.Close()

	db := setupAuthTestDB(t)
	svc := NewAuthService(authTestConfig(server.URL, model.GrantClientCredentials), repository.NewCredentialRepository(db))

	auth, err := svc.Authorization(context.Background())
	if err != nil {
		t.Fatalf("Authorization() error = %v", err)
	}
	if auth != "Bearer tok-1" {
		t.Errorf("auth = %q, want Bearer tok-1", auth)
	}

	// Token 未临期，第二次调用直接复用
	if _, err := svc.Authorization(context.Background()); err != nil {
		t.Fatalf("二次 Authorization() error = %v", err)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("token 请求数 = %d, want 1", *calls)
	}

	status := svc.Status()
	if !status.Authenticated {
		t.Error("刷新成功后应处于已认证状态")
	}
	if status.ExpiresIn <= 0 {
		t.Errorf("expires_in = %d, 应为正数", status.ExpiresIn)
	}
}

func TestAuthService_SnapshotRestoredAcrossRestart(t *testing.T) {
	server, calls := tokenServer(t, func(form map[string]string) (int, any) {
		return 200, map[string]any{"accessToken": "tok-persist", "expiresIn": 21600}
	})
	defer server.Close()

	db := setupAuthTestDB(t)
	credRepo := repository.NewCredentialRepository(db)
	cfg := authTestConfig(server.URL, model.GrantClientCredentials)

	first := NewAuthService(cfg, credRepo)
	if _, err := first.Authorization(context.Background()); err != nil {
		t.Fatalf("Authorization() error = %v", err)
	}

	// 模拟进程重启：新实例应从快照恢复，不再请求远端
	second := NewAuthService(cfg, credRepo)
	auth, err := second.Authorization(context.Background())
	if err != nil {
		t.Fatalf("重启后 Authorization() error = %v", err)
	}
	if auth != "Bearer tok-persist" {
		t.Errorf("auth = %q, want Bearer tok-persist", auth)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("token 请求数 = %d, want 1 (重启后应复用快照)", *calls)
	}
}

func TestAuthService_ConcurrentRefreshSingleFlight(t *testing.T) {
	server, calls := tokenServer(t, func(form map[string]string) (int, any) {
		time.Sleep(50 * time.Millisecond)
		return 200, map[string]any{"accessToken": "tok-sf", "expiresIn": 21600}
	})
	defer server.Close()

	db := setupAuthTestDB(t)
	svc := NewAuthService(authTestConfig(server.URL, model.GrantClientCredentials), repository.NewCredentialRepository(db))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Authorization(context.Background()); err != nil {
				t.Errorf("并发 Authorization() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("token 请求数 = %d, want 1 (并发刷新应合并)", *calls)
	}
}

func TestAuthService_DeniedClearsAccessToken(t *testing.T) {
	server, _ := tokenServer(t, func(form map[string]string) (int, any) {
		return 401, map[string]any{"error": map[string]any{"code": "Unauthorized", "message": "invalid credentials"}}
	})
	defer server.Close()

	db := setupAuthTestDB(t)
	svc := NewAuthService(authTestConfig(server.URL, model.GrantClientCredentials), repository.NewCredentialRepository(db))

	if _, err := svc.Authorization(context.Background()); err == nil {
		t.Fatal("远端拒绝时 Authorization() 应返回错误")
	}
	if svc.Status().Authenticated {
		t.Error("被拒绝后不应处于已认证状态")
	}
}

func TestAuthService_RefreshTokenDenialRequiresReauth(t *testing.T) {
	server, _ := tokenServer(t, func(form map[string]string) (int, any) {
		if form["grantType"] != "refresh_token" {
			t.Errorf("grantType = %s, want refresh_token", form["grantType"])
		}
		if form["refreshToken"] != "stale-refresh" {
			t.Errorf("refreshToken = %s, want stale-refresh", form["refreshToken"])
		}
		return 400, map[string]any{"error": map[string]any{"code": "BadRequest", "message": "refresh token expired"}}
	})
	defer server.Close()

	db := setupAuthTestDB(t)
	credRepo := repository.NewCredentialRepository(db)

	// 预置一份带 refresh_token 的过期快照
	credRepo.Save(context.Background(), &model.CredentialSnapshot{
		ClientID:     "client-1",
		GrantType:    model.GrantAuthorizationCode,
		AccessToken:  "expired-access",
		RefreshToken: "stale-refresh",
		ExpiresAt:    time.Now().Add(-time.Hour),
	})

	svc := NewAuthService(authTestConfig(server.URL, model.GrantAuthorizationCode), credRepo)

	_, err := svc.Authorization(context.Background())
	if !errors.Is(err, ErrReauthorizationRequired) {
		t.Fatalf("err = %v, want ErrReauthorizationRequired", err)
	}

	// 刷新链路已脏，refresh_token 应被清掉并落库
	snap, _ := credRepo.GetByClientID(context.Background(), "client-1")
	if snap == nil {
		t.Fatal("快照不应丢失")
	}
	if snap.RefreshToken != "" {
		t.Errorf("refresh_token = %q, 被拒后应清空", snap.RefreshToken)
	}

	// 没有 refresh_token 后直接要求重新授权，不再请求远端
	if _, err := svc.Authorization(context.Background()); !errors.Is(err, ErrReauthorizationRequired) {
		t.Errorf("err = %v, want ErrReauthorizationRequired", err)
	}
}

func TestAuthService_UserCodeFlow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(UserCodeURL, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("clientId") != "client-1" {
			t.Errorf("clientId = %s, want client-1", r.PostForm.Get("clientId"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"userCode":                  "ABCD-1234",
			"authorizationCodeVerifier": "verifier-xyz",
			"verificationUrl":           "https://portal.ifood.com.br/apps/code",
			"expiresIn":                 600,
		})
	})
	mux.HandleFunc(TokenURL, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("grantType") != model.GrantAuthorizationCode {
			t.Errorf("grantType = %s, want authorization_code", r.PostForm.Get("grantType"))
		}
		if r.PostForm.Get("authorizationCode") != "auth-code-1" {
			t.Errorf("authorizationCode = %s, want auth-code-1", r.PostForm.Get("authorizationCode"))
		}
		if r.PostForm.Get("authorizationCodeVerifier") != "verifier-xyz" {
			t.Errorf("verifier = %s, want verifier-xyz (应从缓存找回)", r.PostForm.Get("authorizationCodeVerifier"))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "tok-user",
			"refreshToken": "refresh-user",
			"expiresIn":    21600,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	db := setupAuthTestDB(t)
	svc := NewAuthService(authTestConfig(server.URL, model.GrantAuthorizationCode), repository.NewCredentialRepository(db))

	resp, err := svc.StartUserCodeFlow(context.Background())
	if err != nil {
		t.Fatalf("StartUserCodeFlow() error = %v", err)
	}
	if resp.UserCode != "ABCD-1234" {
		t.Errorf("userCode = %s, want ABCD-1234", resp.UserCode)
	}

	if err := svc.CompleteUserCodeFlow(context.Background(), "ABCD-1234", "auth-code-1"); err != nil {
		t.Fatalf("CompleteUserCodeFlow() error = %v", err)
	}

	status := svc.Status()
	if !status.Authenticated {
		t.Error("换 Token 成功后应处于已认证状态")
	}
	if !status.HasRefreshToken {
		t.Error("authorization_code 流程应持有 refresh_token")
	}

	// verifier 一次性有效，重复兑换应失败
	if err := svc.CompleteUserCodeFlow(context.Background(), "ABCD-1234", "auth-code-1"); err == nil {
		t.Error("verifier 用完即焚，重复兑换应失败")
	}
}

func TestAuthService_UserCodeFlowLocalVerifier(t *testing.T) {
	var exchanged string
	mux := http.NewServeMux()
	mux.HandleFunc(UserCodeURL, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("codeChallenge") == "" {
			t.Error("申请 userCode 应携带 codeChallenge")
		}
		// 响应不带 verifier，走本地生成的
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"userCode":        "WXYZ-7777",
			"verificationUrl": "https://portal.ifood.com.br/apps/code",
			"expiresIn":       600,
		})
	})
	mux.HandleFunc(TokenURL, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		exchanged = r.PostForm.Get("authorizationCodeVerifier")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "tok-local-pkce",
			"expiresIn":   21600,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	db := setupAuthTestDB(t)
	svc := NewAuthService(authTestConfig(server.URL, model.GrantAuthorizationCode), repository.NewCredentialRepository(db))

	if _, err := svc.StartUserCodeFlow(context.Background()); err != nil {
		t.Fatalf("StartUserCodeFlow() error = %v", err)
	}
	if err := svc.CompleteUserCodeFlow(context.Background(), "WXYZ-7777", "auth-code-9"); err != nil {
		t.Fatalf("CompleteUserCodeFlow() error = %v", err)
	}
	if len(exchanged) != 128 {
		t.Errorf("本地生成的 verifier 长度 = %d, want 128", len(exchanged))
	}
}

func TestAuthService_CompleteSurvivesRestart(t *testing.T) {
	var exchanged string
	mux := http.NewServeMux()
	mux.HandleFunc(UserCodeURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"userCode":                  "REST-0001",
			"authorizationCodeVerifier": "verifier-persist",
			"verificationUrl":           "https://portal.ifood.com.br/apps/code",
			"expiresIn":                 600,
		})
	})
	mux.HandleFunc(TokenURL, func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		exchanged = r.PostForm.Get("authorizationCodeVerifier")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  "tok-after-restart",
			"refreshToken": "refresh-after-restart",
			"expiresIn":    21600,
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	db := setupAuthTestDB(t)
	cfg := authTestConfig(server.URL, model.GrantAuthorizationCode)

	first := NewAuthService(cfg, repository.NewCredentialRepository(db))
	if _, err := first.StartUserCodeFlow(context.Background()); err != nil {
		t.Fatalf("StartUserCodeFlow() error = %v", err)
	}

	// 模拟人工确认期间进程重启：缓存失效，快照仍在
	utils.DeleteCache("REST-0001")

	second := NewAuthService(cfg, repository.NewCredentialRepository(db))
	if err := second.CompleteUserCodeFlow(context.Background(), "REST-0001", "auth-code-r"); err != nil {
		t.Fatalf("重启后 CompleteUserCodeFlow() error = %v", err)
	}
	if exchanged != "verifier-persist" {
		t.Errorf("verifier = %s, want verifier-persist (应从快照恢复)", exchanged)
	}

	// 兑换成功后快照里的 verifier 应清空
	snap, err := repository.NewCredentialRepository(db).GetByClientID(context.Background(), "client-1")
	if err != nil || snap == nil {
		t.Fatalf("读取快照失败: %v", err)
	}
	if snap.Verifier != "" {
		t.Errorf("快照 verifier = %s, want 空", snap.Verifier)
	}
}

func TestAuthService_CompleteWithUnknownUserCode(t *testing.T) {
	db := setupAuthTestDB(t)
	svc := NewAuthService(authTestConfig("http://127.0.0.1:0", model.GrantAuthorizationCode), repository.NewCredentialRepository(db))

	if err := svc.CompleteUserCodeFlow(context.Background(), "NO-SUCH-CODE", "code"); err == nil {
		t.Error("未知 userCode 应返回错误")
	}
}
