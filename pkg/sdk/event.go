package sdk

import (
	"time"

	"github.com/google/uuid"
)

// Event is the unit flowing through a pipeline.
// Processors never modify an Event in place; they return new ones.
// Event 是在管道中流转的数据单元。
// 处理器从不原地修改 Event，而是返回新的 Event。
type Event struct {
	ID        string    `json:"id"`
	Data      Data      `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	// Source is collector-specific provenance, carried unchanged through processors.
	// Source 是采集器特定的来源信息，在处理器中原样传递。
	Source Data `json:"source"`
}

// NewEvent creates an event stamped with a fresh ID and the current time.
// NewEvent 创建带有新 ID 和当前时间的事件。
func NewEvent(data Data, source Data) Event {
	return Event{
		ID:        uuid.NewString(),
		Data:      data,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}

// WithData returns a copy of the event carrying data. ID, Timestamp and Source are kept.
// WithData 返回携带新数据的事件副本，保留 ID、Timestamp 和 Source。
func (e Event) WithData(data Data) Event {
	e.Data = data
	return e
}
