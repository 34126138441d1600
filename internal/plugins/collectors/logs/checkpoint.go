package logs

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/netxfw/saf/internal/utils/fileutil"
	"github.com/netxfw/saf/pkg/sdk"
	"github.com/nxadm/tail"
)

// Tail positions accepted by the tail_position option.
// tail_position 选项接受的读取位置。
const (
	PositionStart  = "start"
	PositionEnd    = "end"
	PositionOffset = "offset"
)

// DefaultCheckpointInterval is how often offsets are flushed to disk.
const DefaultCheckpointInterval = 2 * time.Second

// saveMu serializes read-merge-write of checkpoint files shared by several collectors.
var saveMu sync.Mutex

// CheckpointManager handles persistence of file offsets.
// With an empty file it only tracks offsets in memory.
// CheckpointManager 负责文件偏移量的持久化。
// 文件路径为空时仅在内存中记录偏移量。
type CheckpointManager struct {
	logger   sdk.Logger
	mu       sync.Mutex
	offsets  map[string]int64
	dirty    bool
	file     string
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewCheckpointManager creates a new manager.
// NewCheckpointManager 创建新的管理器。
func NewCheckpointManager(file string, interval time.Duration, logger sdk.Logger) *CheckpointManager {
	if interval <= 0 {
		interval = DefaultCheckpointInterval
	}
	return &CheckpointManager{
		logger:   logger,
		offsets:  make(map[string]int64),
		file:     file,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func readOffsets(file string) (map[string]int64, error) {
	data, err := os.ReadFile(file) // #nosec G304 // checkpoint path comes from trusted config
	if err != nil {
		return nil, err
	}
	offsets := make(map[string]int64)
	if err := json.Unmarshal(data, &offsets); err != nil {
		return nil, err
	}
	return offsets, nil
}

// Load reads offsets from disk.
// Load 从磁盘读取偏移量。
func (cm *CheckpointManager) Load() {
	if cm.file == "" {
		return
	}
	offsets, err := readOffsets(cm.file)
	if err != nil {
		if !os.IsNotExist(err) {
			cm.logger.Warnf("⚠️  Failed to load checkpoints from %s: %v", cm.file, err)
		}
		return
	}

	cm.mu.Lock()
	for k, v := range offsets {
		if _, ok := cm.offsets[k]; !ok {
			cm.offsets[k] = v
		}
	}
	cm.mu.Unlock()
}

// Save merges this manager's offsets into the checkpoint file.
// Save 将本管理器的偏移量合并写入检查点文件。
func (cm *CheckpointManager) Save() {
	if cm.file == "" {
		return
	}
	cm.mu.Lock()
	if !cm.dirty {
		cm.mu.Unlock()
		return
	}
	snapshot := make(map[string]int64, len(cm.offsets))
	for k, v := range cm.offsets {
		snapshot[k] = v
	}
	cm.dirty = false
	cm.mu.Unlock()

	saveMu.Lock()
	defer saveMu.Unlock()

	merged, err := readOffsets(cm.file)
	if err != nil {
		merged = make(map[string]int64)
	}
	for k, v := range snapshot {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		cm.logger.Warnf("⚠️  Failed to marshal checkpoints: %v", err)
		return
	}
	if err := fileutil.AtomicWriteFile(cm.file, data, 0644); err != nil {
		cm.logger.Warnf("⚠️  Failed to save checkpoints: %v", err)
	}
}

// Start loads saved offsets and begins periodic saving.
// Start 加载已保存的偏移量并开始定期保存。
func (cm *CheckpointManager) Start() {
	cm.Load()
	cm.mu.Lock()
	cm.started = true
	cm.mu.Unlock()

	go func() {
		defer close(cm.done)
		ticker := time.NewTicker(cm.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cm.Save()
			case <-cm.stop:
				return
			}
		}
	}()
}

// Stop stops periodic saving and does a final save. Safe to call more than once.
// Stop 停止定期保存并执行最后一次保存。可重复调用。
func (cm *CheckpointManager) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stop)
		cm.mu.Lock()
		started := cm.started
		cm.mu.Unlock()
		if started {
			<-cm.done
		}
		cm.Save()
	})
}

// UpdateOffset updates the offset for a file.
// UpdateOffset 更新文件的偏移量。
func (cm *CheckpointManager) UpdateOffset(file string, offset int64) {
	cm.mu.Lock()
	if cm.offsets[file] != offset {
		cm.offsets[file] = offset
		cm.dirty = true
	}
	cm.mu.Unlock()
}

// Offset returns the last recorded offset for a file.
// Offset 返回文件最后记录的偏移量。
func (cm *CheckpointManager) Offset(file string) (int64, bool) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	v, ok := cm.offsets[file]
	return v, ok
}

// GetOffset returns the SeekInfo for a file based on policy.
// mode: "start" (default), "end", "offset"
// GetOffset 根据策略返回文件的 SeekInfo。
func (cm *CheckpointManager) GetOffset(file string, mode string) *tail.SeekInfo {
	switch mode {
	case PositionEnd:
		return &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	case PositionOffset:
		savedOffset, ok := cm.Offset(file)
		if !ok {
			return &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
		}
		// Validate file size to detect rotation
		info, err := os.Stat(file)
		if err == nil && info.Size() < savedOffset {
			cm.logger.Infof("🔄 Log rotation detected for %s (size %d < offset %d). Resetting to start.", file, info.Size(), savedOffset)
			return &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
		}
		return &tail.SeekInfo{Offset: savedOffset, Whence: io.SeekStart}
	default:
		return &tail.SeekInfo{Offset: 0, Whence: io.SeekStart}
	}
}
