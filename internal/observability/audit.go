// Package observability provides the tool-call audit log and the
// knowledge-set integrity checker.
package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// ToolInvocation is one audited tool call.
type ToolInvocation struct {
	Time       time.Time `json:"time"`
	Tool       string    `json:"tool"`
	ERP        string    `json:"erp,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	IsError    bool      `json:"is_error"`
}

// UsageReport aggregates the audit log for the check command.
type UsageReport struct {
	Total  int            `json:"total"`
	ByTool map[string]int `json:"by_tool"`
	ByERP  map[string]int `json:"by_erp"`
	Errors int            `json:"errors"`
	First  *time.Time     `json:"first,omitempty"`
	Last   *time.Time     `json:"last,omitempty"`
}

// AuditLog records tool invocations. Recording must never fail a tool
// call: callers ignore Record errors beyond logging them.
type AuditLog interface {
	Record(inv ToolInvocation) error
	Report() (*UsageReport, error)
	Close() error
}

// jsonlAuditLog implements AuditLog with an append-only JSONL file.
type jsonlAuditLog struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// NewJSONLAuditLog opens (or creates) the audit file at path.
func NewJSONLAuditLog(path string) (AuditLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &jsonlAuditLog{path: path, file: f}, nil
}

func (l *jsonlAuditLog) Record(inv ToolInvocation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshalling audit record: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	return nil
}

func (l *jsonlAuditLog) Report() (*UsageReport, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyReport(), nil
		}
		return nil, fmt.Errorf("opening audit log for reading: %w", err)
	}
	defer func() { _ = f.Close() }()

	report := emptyReport()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var inv ToolInvocation
		if err := json.Unmarshal(line, &inv); err != nil {
			continue // skip malformed lines
		}

		report.Total++
		report.ByTool[inv.Tool]++
		if inv.ERP != "" {
			report.ByERP[inv.ERP]++
		}
		if inv.IsError {
			report.Errors++
		}
		t := inv.Time
		if report.First == nil || t.Before(*report.First) {
			report.First = &t
		}
		if report.Last == nil || t.After(*report.Last) {
			report.Last = &t
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning audit log: %w", err)
	}
	return report, nil
}

func (l *jsonlAuditLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing audit log: %w", err)
	}
	return nil
}

func emptyReport() *UsageReport {
	return &UsageReport{
		ByTool: make(map[string]int),
		ByERP:  make(map[string]int),
	}
}
