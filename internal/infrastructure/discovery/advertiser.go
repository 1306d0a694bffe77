package discovery

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/todokit/backend/internal/infrastructure/log"
)

// DefaultService 默认 mDNS 服务类型
const DefaultService = "_todokit._tcp"

// ServiceInfo 广播的服务信息
type ServiceInfo struct {
	Instance string
	Service  string
	Domain   string
	Port     int
	Txt      map[string]string
}

// registerFunc 与 zeroconf.Register 签名一致，测试时替换
type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (*zeroconf.Server, error)

// Advertiser 局域网 mDNS 服务广播器
type Advertiser struct {
	mu       sync.Mutex
	server   *zeroconf.Server
	info     *ServiceInfo
	register registerFunc
	logger   *slog.Logger
}

// NewAdvertiser 创建广播器
func NewAdvertiser() *Advertiser {
	return &Advertiser{
		register: zeroconf.Register,
		logger:   log.NewModuleLogger("discovery", "advertiser"),
	}
}

// Start 开始广播服务
func (a *Advertiser) Start(info ServiceInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.info != nil {
		return errors.New("advertiser is already running")
	}
	info = withDefaults(info)
	if info.Port <= 0 {
		return fmt.Errorf("invalid port %d", info.Port)
	}

	server, err := a.register(info.Instance, info.Service, info.Domain, info.Port, info.TxtRecords(), nil)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	a.server = server
	a.info = &info
	a.logger.Info("mDNS advertiser started",
		"instance", info.Instance,
		"service", info.Service,
		"port", info.Port,
	)
	return nil
}

// Stop 停止广播，可重复调用
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.info == nil {
		return
	}
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	a.info = nil
	a.logger.Info("mDNS advertiser stopped")
}

// IsRunning 是否正在广播
func (a *Advertiser) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.info != nil
}

// Info 当前广播的服务信息
func (a *Advertiser) Info() *ServiceInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.info == nil {
		return nil
	}
	c := *a.info
	return &c
}

// TxtRecords 按 key=value 形式输出 TXT 记录，顺序固定
func (s ServiceInfo) TxtRecords() []string {
	keys := make([]string, 0, len(s.Txt))
	for k := range s.Txt {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+s.Txt[k])
	}
	return out
}

// BuildServiceInfo 构建服务信息
func BuildServiceInfo(instance, service string, port int, version string) ServiceInfo {
	return ServiceInfo{
		Instance: instance,
		Service:  service,
		Port:     port,
		Txt: map[string]string{
			"version": version,
			"api":     "/api/v1",
			"port":    strconv.Itoa(port),
		},
	}
}

func withDefaults(info ServiceInfo) ServiceInfo {
	if info.Service == "" {
		info.Service = DefaultService
	}
	if info.Domain == "" {
		info.Domain = "local."
	}
	if info.Instance == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "todokit"
		}
		info.Instance = host
	}
	return info
}

// PortFromAddr 从监听地址（如 ":8000"）解析端口
func PortFromAddr(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(port)
}
