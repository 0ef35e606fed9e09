package data

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/sergejparity/e-invoice/internal/domain/model"
)

// FileAuditLog appends audit events to a newline-delimited JSON file, one
// event per line. Entries are never overwritten or removed; the file is a
// replayable history independent of the mutable job records.
type FileAuditLog struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileAuditLog creates an audit log writing to the given file path.
// The file is created on first write.
func NewFileAuditLog(path string, logger *slog.Logger) *FileAuditLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileAuditLog{path: path, logger: logger}
}

// Record serializes the event and appends it as one line.
func (l *FileAuditLog) Record(ctx context.Context, event *model.AuditEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}

	l.logger.DebugContext(ctx, "audit event written",
		"event_type", event.EventType, "job_id", event.JobID)
	return nil
}

// ReadAll replays every event in the log in write order. A missing file is
// an empty history, not an error.
func (l *FileAuditLog) ReadAll(ctx context.Context) ([]*model.AuditEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []*model.AuditEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event model.AuditEvent
		if err := json.Unmarshal(line, &event); err != nil {
			return nil, fmt.Errorf("decode audit event: %w", err)
		}
		out = append(out, &event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return out, nil
}

// ReadByJob replays the events recorded for one job, in write order.
func (l *FileAuditLog) ReadByJob(ctx context.Context, jobID string) ([]*model.AuditEvent, error) {
	all, err := l.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	var out []*model.AuditEvent
	for _, event := range all {
		if event.JobID == jobID {
			out = append(out, event)
		}
	}
	return out, nil
}
