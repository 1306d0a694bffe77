package events

import "time"

// ConfigEvent 配置文件变更事件
type ConfigEvent struct {
	// FilePath 配置文件路径
	FilePath string
	// EventTime 事件发生时间
	EventTime time.Time
}

// Type 实现 Event 接口
func (e *ConfigEvent) Type() EventType {
	return ConfigChanged
}

// Timestamp 实现 Event 接口
func (e *ConfigEvent) Timestamp() time.Time {
	return e.EventTime
}
