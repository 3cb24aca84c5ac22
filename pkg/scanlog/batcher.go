// Package scanlog persists discovered devices as JSON lines. Records are
// buffered through a batcher so slow disks never stall the scan's event
// consumer; flushes happen on batch size or interval, whichever hits first.
package scanlog

import (
	"encoding/json"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/projectdiscovery/utils/batcher"
	envutil "github.com/projectdiscovery/utils/env"
	"github.com/znetsec/znetscan/pkg/types"
)

var (
	// Default batch size for device record flushes
	DefaultBatchSize = 64
	// Default flush interval for device record flushes
	DefaultFlushInterval = 2 * time.Second
)

// GetBatchSize returns the batch size from environment or default
func GetBatchSize() int {
	envVal := envutil.GetEnvOrDefault("ZNETSCAN_LOG_BATCH_SIZE", "")
	if envVal != "" {
		if size, err := strconv.Atoi(envVal); err == nil && size > 0 {
			return size
		}
	}
	return DefaultBatchSize
}

// GetFlushInterval returns the flush interval from environment or default
func GetFlushInterval() time.Duration {
	envVal := envutil.GetEnvOrDefault("ZNETSCAN_LOG_FLUSH_INTERVAL", "")
	if envVal != "" {
		if interval, err := strconv.Atoi(envVal); err == nil && interval > 0 {
			return time.Duration(interval) * time.Second
		}
	}
	return DefaultFlushInterval
}

// DeviceWriter batches device records and writes them to an output stream
// as JSON lines
type DeviceWriter struct {
	scanID  string
	batcher *batcher.Batcher[types.DeviceRecord]

	mu sync.Mutex
	w  io.Writer
}

// NewDeviceWriter creates a DeviceWriter flushing to w. Callers must Close
// it to drain the final partial batch.
func NewDeviceWriter(scanID string, w io.Writer) *DeviceWriter {
	dw := &DeviceWriter{
		scanID: scanID,
		w:      w,
	}

	dw.batcher = batcher.New(
		batcher.WithMaxCapacity[types.DeviceRecord](GetBatchSize()),
		batcher.WithFlushInterval[types.DeviceRecord](GetFlushInterval()),
		batcher.WithFlushCallback[types.DeviceRecord](dw.flush),
	)
	go dw.batcher.Run()

	return dw
}

// Write queues one device for persistence
func (dw *DeviceWriter) Write(device types.Device) {
	dw.batcher.Append(types.NewDeviceRecord(dw.scanID, device))
}

// Close flushes pending records and stops the batcher
func (dw *DeviceWriter) Close() {
	dw.batcher.Stop()
	dw.batcher.WaitDone()
}

func (dw *DeviceWriter) flush(records []types.DeviceRecord) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			slog.Error("Failed to marshal device record",
				"scan_id", dw.scanID,
				"address", record.Address,
				"error", err)
			continue
		}
		if _, err := dw.w.Write(append(line, '\n')); err != nil {
			slog.Error("Failed to write device record",
				"scan_id", dw.scanID,
				"error", err)
			return
		}
	}
}
