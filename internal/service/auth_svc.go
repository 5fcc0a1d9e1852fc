package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ifood_partner_v1/internal/config"
	"ifood_partner_v1/internal/model"
	"ifood_partner_v1/internal/repository"
	"ifood_partner_v1/pkg/ifood"
	"ifood_partner_v1/pkg/utils"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// 业务常量
const (
	// TokenURL iFood 官方 Token 端点 (相对 BaseURL)
	TokenURL    = "/authentication/v1.0/oauth/token"
	UserCodeURL = "/authentication/v1.0/oauth/userCode"

	// TokenSafetyMargin 提前量：距离过期不足 5 分钟就视为需要刷新
	// 避免请求发出后 Token 恰好在途中过期
	TokenSafetyMargin = 5 * time.Minute
)

// ErrReauthorizationRequired 刷新链路彻底断裂，必须人工重新走授权流程
var ErrReauthorizationRequired = errors.New("凭证已失效，需要重新授权")

// ==================== AuthService Token 生命周期管理 ====================

// AuthService 持有进程内唯一的一份 iFood 凭证
// 实现 net.AuthProvider，所有业务请求的 Authorization 头都从这里取
type AuthService struct {
	cfg      *config.Config
	credRepo repository.CredentialRepository
	client   *resty.Client

	// 并发请求同时发现 Token 过期时，只允许一个真正去刷新
	group singleflight.Group

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time

	// verifier 待完成的 PKCE verifier
	// 随快照落库，人工确认期间进程重启也能继续走完授权
	verifier string
}

// NewAuthService 工厂方法
// 启动时尝试从快照表恢复凭证，实现热重启不丢 Token
func NewAuthService(cfg *config.Config, credRepo repository.CredentialRepository) *AuthService {
	s := &AuthService{
		cfg:      cfg,
		credRepo: credRepo,
		client: resty.New().
			SetBaseURL(cfg.IfoodBaseURL).
			SetTimeout(30 * time.Second),
	}
	s.restoreSnapshot()
	return s
}

// restoreSnapshot 从数据库恢复上次保存的凭证
func (s *AuthService) restoreSnapshot() {
	if s.credRepo == nil {
		return
	}
	snap, err := s.credRepo.GetByClientID(context.Background(), s.cfg.ClientID)
	if err != nil {
		log.Printf("恢复凭证快照失败: %v", err)
		return
	}
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.accessToken = snap.AccessToken
	s.refreshToken = snap.RefreshToken
	s.expiresAt = snap.ExpiresAt
	s.verifier = snap.Verifier
	s.mu.Unlock()
	log.Printf("已恢复凭证快照，过期时间: %s", snap.ExpiresAt.Format(time.RFC3339))
}

// Authorization 返回当前可用的 Authorization 头
// Token 仍在安全边界内直接复用，否则触发一次刷新
func (s *AuthService) Authorization(ctx context.Context) (string, error) {
	s.mu.RLock()
	token := s.accessToken
	valid := token != "" && time.Until(s.expiresAt) > TokenSafetyMargin
	s.mu.RUnlock()

	if valid {
		return "Bearer " + token, nil
	}

	if err := s.refresh(ctx); err != nil {
		return "", err
	}

	s.mu.RLock()
	token = s.accessToken
	s.mu.RUnlock()
	return "Bearer " + token, nil
}

// ForceReauthorize 远端返回 401 时由 Dispatcher 回调
// 本地缓存的 Token 已被远端否定，直接作废并强制换新
func (s *AuthService) ForceReauthorize(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()
	return s.refresh(ctx)
}

// refresh 按配置的授权模式换取新 Token
// singleflight 保证并发场景下只有一次真实的网络请求
func (s *AuthService) refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("token", func() (interface{}, error) {
		if err := s.cfg.ValidateCredentials(); err != nil {
			return nil, err
		}

		s.mu.RLock()
		refreshToken := s.refreshToken
		s.mu.RUnlock()

		switch {
		case s.cfg.GrantType == model.GrantClientCredentials:
			return nil, s.clientCredentialsGrant(ctx)
		case refreshToken != "":
			return nil, s.refreshTokenGrant(ctx, refreshToken)
		default:
			// authorization_code 模式下没有 refresh_token 可用，只能人工重新授权
			return nil, ErrReauthorizationRequired
		}
	})
	return err
}

// clientCredentialsGrant 机构级授权：凭 clientId/clientSecret 直接换 Token
func (s *AuthService) clientCredentialsGrant(ctx context.Context) error {
	return s.requestToken(ctx, map[string]string{
		"grantType":    model.GrantClientCredentials,
		"clientId":     s.cfg.ClientID,
		"clientSecret": s.cfg.ClientSecret,
	})
}

// refreshTokenGrant 授权码模式下用 refresh_token 续期
func (s *AuthService) refreshTokenGrant(ctx context.Context, refreshToken string) error {
	err := s.requestToken(ctx, map[string]string{
		"grantType":    "refresh_token",
		"clientId":     s.cfg.ClientID,
		"clientSecret": s.cfg.ClientSecret,
		"refreshToken": refreshToken,
	})
	if err != nil {
		// refresh_token 被远端拒绝说明整条刷新链路已脏，清掉后要求重新授权
		var denied *tokenDeniedError
		if errors.As(err, &denied) {
			s.mu.Lock()
			s.refreshToken = ""
			s.mu.Unlock()
			s.saveSnapshot()
			return fmt.Errorf("%w: %v", ErrReauthorizationRequired, err)
		}
	}
	return err
}

// StartUserCodeFlow 授权码模式第一步：申请 userCode
// 返回的链接需要人工在 iFood 商家后台完成确认
func (s *AuthService) StartUserCodeFlow(ctx context.Context) (*ifood.UserCodeResp, error) {
	// 本地生成 PKCE verifier，申请时携带 S256 challenge
	verifier, err := utils.GenerateRandomString(128)
	if err != nil {
		return nil, fmt.Errorf("生成 PKCE verifier 失败: %v", err)
	}

	var userCodeResp ifood.UserCodeResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"clientId":      s.cfg.ClientID,
			"codeChallenge": utils.GenerateCodeChallenge(verifier),
		}).
		SetResult(&userCodeResp).
		Post(UserCodeURL)

	if err != nil {
		return nil, fmt.Errorf("申请 userCode 网络请求失败: %v", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("iFood 拒绝 userCode 申请 (Status %d): %s", resp.StatusCode(), resp.String())
	}

	// 响应若下发了服务端 verifier 则以远端为准
	if userCodeResp.AuthorizationCodeVerifier != "" {
		verifier = userCodeResp.AuthorizationCodeVerifier
	}

	// 缓存 Verifier (格式为 key=userCode, value=verifier)
	// 人工确认完拿着 authorizationCode 回来时，靠 userCode 找回对应的 verifier
	utils.SetCache(userCodeResp.UserCode, verifier)

	// 同步进快照，人工确认期间重启进程也能续上
	s.mu.Lock()
	s.verifier = verifier
	s.mu.Unlock()
	s.saveSnapshot()

	return &userCodeResp, nil
}

// CompleteUserCodeFlow 授权码模式第二步：用人工确认后的授权码换 Token
func (s *AuthService) CompleteUserCodeFlow(ctx context.Context, userCode, authorizationCode string) error {
	// 1. 找回 verifier；缓存失效 (重启/超时淘汰) 时退回快照里的待完成 verifier
	verifier, exists := utils.GetCache(userCode)
	if !exists {
		s.mu.RLock()
		verifier = s.verifier
		s.mu.RUnlock()
	}
	if verifier == "" {
		return errors.New("授权超时或 userCode 无效，请重新发起")
	}

	// 2. 换取 Token
	err := s.requestToken(ctx, map[string]string{
		"grantType":                 model.GrantAuthorizationCode,
		"clientId":                  s.cfg.ClientID,
		"clientSecret":              s.cfg.ClientSecret,
		"authorizationCode":         authorizationCode,
		"authorizationCodeVerifier": verifier,
	})
	if err != nil {
		return err
	}

	// 3. 用完即清，verifier 一次性有效
	utils.DeleteCache(userCode)
	s.mu.Lock()
	s.verifier = ""
	s.mu.Unlock()
	s.saveSnapshot()
	return nil
}

// tokenDeniedError 远端明确拒绝 (4xx)，区别于网络抖动
type tokenDeniedError struct {
	status int
	body   string
}

func (e *tokenDeniedError) Error() string {
	return fmt.Sprintf("iFood 拒绝发放 Token (Status %d): %s", e.status, e.body)
}

// requestToken 统一的 Token 端点请求与状态流转
func (s *AuthService) requestToken(ctx context.Context, form map[string]string) error {
	var tokenResp ifood.TokenResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(form).
		SetResult(&tokenResp).
		Post(TokenURL)

	// A. 网络层错误 (超时/DNS失败)
	// 策略：网络抖动不作废凭证，保持原状等待下一次触发重试
	if err != nil {
		return fmt.Errorf("token 网络请求失败: %v", err)
	}

	// B. 业务层错误 (iFood 明确拒绝)
	// 策略：作废 access_token，refresh_token 保留给上层判断是否还有救
	if resp.StatusCode() != 200 {
		s.mu.Lock()
		s.accessToken = ""
		s.expiresAt = time.Time{}
		s.mu.Unlock()
		s.saveSnapshot()
		return &tokenDeniedError{status: resp.StatusCode(), body: resp.String()}
	}

	// C. 成功
	s.mu.Lock()
	s.accessToken = tokenResp.AccessToken
	if tokenResp.RefreshToken != "" {
		s.refreshToken = tokenResp.RefreshToken
	}
	s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	s.mu.Unlock()

	s.saveSnapshot()
	return nil
}

// saveSnapshot 凭证落库，失败只记日志不影响主流程
func (s *AuthService) saveSnapshot() {
	if s.credRepo == nil {
		return
	}
	s.mu.RLock()
	snap := &model.CredentialSnapshot{
		ClientID:     s.cfg.ClientID,
		GrantType:    s.cfg.GrantType,
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		Verifier:     s.verifier,
		ExpiresAt:    s.expiresAt,
	}
	s.mu.RUnlock()

	if err := s.credRepo.Save(context.Background(), snap); err != nil {
		log.Printf("保存凭证快照失败: %v", err)
	}
}

// AuthStatus 运维视角的凭证状态
type AuthStatus struct {
	Authenticated   bool      `json:"authenticated"`
	GrantType       string    `json:"grant_type"`
	ExpiresAt       time.Time `json:"expires_at"`
	ExpiresIn       int64     `json:"expires_in"`
	HasRefreshToken bool      `json:"has_refresh_token"`
}

// Status 查询当前凭证状态 (不触发刷新)
func (s *AuthService) Status() AuthStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	remaining := int64(0)
	authenticated := s.accessToken != "" && time.Now().Before(s.expiresAt)
	if authenticated {
		remaining = int64(time.Until(s.expiresAt).Seconds())
	}
	return AuthStatus{
		Authenticated:   authenticated,
		GrantType:       s.cfg.GrantType,
		ExpiresAt:       s.expiresAt,
		ExpiresIn:       remaining,
		HasRefreshToken: s.refreshToken != "",
	}
}
