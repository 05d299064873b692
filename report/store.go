package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound 指定日期没有报告
var ErrNotFound = errors.New("report not found")

// Store 按日期落盘的报告存储：data/YYYY-MM-DD.json
type Store struct {
	dataDir    string
	reportsDir string
}

// NewStore 创建存储，dataDir 放 JSON 报告，reportsDir 放文本版
func NewStore(dataDir, reportsDir string) (*Store, error) {
	for _, dir := range []string{dataDir, reportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create report dir failed: %w", err)
		}
	}
	return &Store{dataDir: dataDir, reportsDir: reportsDir}, nil
}

// Write 持久化指定日期的 JSON 报告
func (s *Store) Write(date string, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dataDir, date+".json"), data, 0o644)
}

// Read 读取指定日期的报告，不存在返回 ErrNotFound
func (s *Store) Read(date string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, date+".json"))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s failed: %w", date, err)
	}
	return &r, nil
}

// List 已有报告的日期列表，新的在前
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, err
	}
	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(name, ".json"))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// WriteText 保存文本版报告，文件名带生成时刻
func (s *Store) WriteText(now time.Time, content string) (string, error) {
	name := fmt.Sprintf("A_Share_Report_%s.txt", now.Format("2006-01-02_15-04-05"))
	path := filepath.Join(s.reportsDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
