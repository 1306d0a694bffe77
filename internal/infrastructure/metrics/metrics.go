// Package metrics 提供 Prometheus 指标，使用独立 Registry
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/todokit/backend/internal/domain/events"
)

const namespace = "todokit"

// Metrics 服务指标集合
type Metrics struct {
	registry *prometheus.Registry

	// httpRequests 按方法、路由模板、状态码计数
	httpRequests *prometheus.CounterVec
	// httpDuration 请求耗时
	httpDuration *prometheus.HistogramVec
	// todoEvents 待办变更事件计数
	todoEvents *prometheus.CounterVec
	// todosCleared 批量删除的待办总数
	todosCleared prometheus.Counter
}

// NewMetrics 创建指标集合并注册 Go 运行时指标
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
		todoEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "todo",
			Name:      "events_total",
			Help:      "Todo mutations by event type",
		}, []string{"type"}),
		todosCleared: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "todo",
			Name:      "cleared_total",
			Help:      "Todos removed by delete-completed",
		}),
	}
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 底层 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RegisterGauge 注册按需取值的 Gauge，例如 WebSocket 连接数
func (m *Metrics) RegisterGauge(subsystem, name, help string, fn func() float64) error {
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, fn))
}

// HandleEvent 实现 events.Handler，统计待办事件
func (m *Metrics) HandleEvent(event events.Event) error {
	m.todoEvents.WithLabelValues(string(event.Type())).Inc()
	if e, ok := event.(*events.TodoEvent); ok && e.EventType == events.TodoCleared {
		m.todosCleared.Add(float64(e.Count))
	}
	return nil
}

// 编译时检查接口实现
var _ events.Handler = (*Metrics)(nil)
