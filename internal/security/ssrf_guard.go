// Package security 提供出站请求防护与不可信内容的消毒能力。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// allowedSchemes 是出站请求允许的 URL 协议。
var allowedSchemes = []string{"http", "https"}

// blockedNetworks 是出站请求禁止访问的网络段，包初始化时解析一次。
// safeurl 在 net.Dialer 层面校验 DNS 解析后的真实 IP，
// 因此 DNS 重绑定攻击也会被拦截。
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		// 私有地址 (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// 环回 (RFC 1122)
		"127.0.0.0/8",
		// 链路本地 (RFC 3927)，含云厂商元数据地址 169.254.169.254
		"169.254.0.0/16",
		// 当前网络
		"0.0.0.0/8",
		// IPv6 环回 / 链路本地 / 唯一本地
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// SSRFGuard 为上游抓取提供 SSRF 防护：
// 构造带防护的 HTTP 客户端，以及对配置的上游地址做启动前校验。
type SSRFGuard struct{}

// NewSSRFGuard 生成 SSRFGuard 实例。
func NewSSRFGuard() *SSRFGuard {
	return &SSRFGuard{}
}

// NewSafeClient 生成带 SSRF 防护的 HTTP 客户端。
// safeurl 默认拦截私有地址、环回、链路本地与元数据地址，
// 并在拨号阶段复验 DNS 解析结果。
func (g *SSRFGuard) NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL 对 URL 做不经 DNS 解析的静态校验，
// 用于启动时检查配置的上游接口地址。拨号阶段的动态校验由
// NewSafeClient 返回的客户端完成。
func (g *SSRFGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isBlockedIP(ip) {
			return fmt.Errorf("blocked IP address: %s", ip.String())
		}
		return nil
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}
	return nil
}

// isAllowedScheme 校验协议是否在允许列表内。
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isBlockedIP 校验 IP 是否落在禁止网络段内。
func isBlockedIP(ip net.IP) bool {
	for _, network := range blockedNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
