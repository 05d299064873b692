// Package cache 提供按时间桶落盘的取数缓存
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"stockradar/dataset"
)

// Frequency 缓存刷新频率
type Frequency int

const (
	// Hourly 小时桶：盘中行情类数据
	Hourly Frequency = iota
	// Daily 日桶：日线、日历类数据
	Daily
)

// historyEpoch 增量历史的起始日期，首次抓取从这天开始
const historyEpoch = "19900101"

// Producer 缓存未命中时的取数函数
type Producer func(ctx context.Context) (*dataset.Table, error)

// IncrementalProducer 增量取数函数，startDate 格式 YYYYMMDD
type IncrementalProducer func(ctx context.Context, startDate string) (*dataset.Table, error)

// Manager 管理缓存目录下的 JSON 表文件。
// 文件名形如 {name}_{params}_{bucket}.json，bucket 是小时或日期戳，
// 同一桶内重复取数直接命中文件；跨桶后旧文件由 Sweep 清理。
// 基线文件 {name}_base.json 承载增量历史，不参与清理。
type Manager struct {
	dir  string
	log  *zap.Logger
	now  func() time.Time
	memo *lru.Cache[string, *dataset.Table]
}

// NewManager 创建缓存管理器
func NewManager(dir string, log *zap.Logger) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	memo, err := lru.New[string, *dataset.Table](256)
	if err != nil {
		return nil, err
	}
	return &Manager{dir: dir, log: log, now: time.Now, memo: memo}, nil
}

// bucket 当前时间桶标签
func (m *Manager) bucket(freq Frequency) string {
	if freq == Hourly {
		return m.now().Format("2006010215")
	}
	return m.now().Format("20060102")
}

// fileName 组装缓存文件名
func fileName(name string, params []string, suffix string) string {
	parts := append([]string{name}, params...)
	parts = append(parts, suffix)
	return strings.Join(parts, "_") + ".json"
}

// Fetch 带缓存取数。当前桶命中则直接返回缓存；未命中时调用
// producer，结果（包括失败时的空表）都会写入缓存——失败也缓存，
// 避免同一桶内反复打挂掉的接口。
func (m *Manager) Fetch(ctx context.Context, name string, params []string, freq Frequency, producer Producer) *dataset.Table {
	file := fileName(name, params, m.bucket(freq))
	if table, ok := m.load(file); ok {
		return table
	}

	table, err := producer(ctx)
	if err != nil || table == nil {
		if err != nil {
			m.log.Warn("fetch failed, caching empty result",
				zap.String("name", name), zap.Error(err))
		}
		table = &dataset.Table{}
	}
	m.store(file, table)
	return table
}

// FetchIncremental 增量历史取数。基线文件不存在时从头抓全量；
// 存在时从基线最大日期的次日抓增量，合并去重后回写基线。
// 增量抓取失败时返回已有基线，历史数据宁可略旧也不丢。
func (m *Manager) FetchIncremental(ctx context.Context, name string, dateCol string, producer IncrementalProducer) *dataset.Table {
	file := fileName(name, nil, "base")

	base, ok := m.load(file)
	if !ok || base.Empty() {
		full, err := producer(ctx, historyEpoch)
		if err != nil || full == nil {
			if err != nil {
				m.log.Warn("initial history fetch failed",
					zap.String("name", name), zap.Error(err))
			}
			return &dataset.Table{}
		}
		m.store(file, full)
		return full
	}

	col := base.ColumnIndex(dateCol)
	if col == dataset.ColNotFound {
		return base
	}
	last := base.MaxDate(col)
	if last.IsZero() {
		return base
	}

	start := last.AddDate(0, 0, 1)
	if start.Format("20060102") > m.now().Format("20060102") {
		return base
	}

	delta, err := producer(ctx, start.Format("20060102"))
	if err != nil {
		m.log.Warn("incremental fetch failed, serving cached history",
			zap.String("name", name), zap.Error(err))
		return base
	}
	if delta == nil || delta.Empty() {
		return base
	}

	base.AppendTable(delta)
	base.DedupeKeepLast(col)
	base.SortByColumn(col)
	m.store(file, base)
	return base
}

// Sweep 清理过期缓存：删除既不属于当前小时/当日桶、
// 也不是基线文件的所有缓存文件。
func (m *Manager) Sweep() {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.log.Warn("cache sweep failed", zap.Error(err))
		return
	}

	hourly := "_" + m.bucket(Hourly) + ".json"
	daily := "_" + m.bucket(Daily) + ".json"
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasSuffix(name, "_base.json") ||
			strings.HasSuffix(name, hourly) || strings.HasSuffix(name, daily) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
			m.log.Warn("remove stale cache file failed",
				zap.String("file", name), zap.Error(err))
			continue
		}
		m.memo.Remove(name)
		removed++
	}
	if removed > 0 {
		m.log.Info("cache sweep done", zap.Int("removed", removed))
	}
}

func (m *Manager) load(file string) (*dataset.Table, bool) {
	if table, ok := m.memo.Get(file); ok {
		return table, true
	}
	data, err := os.ReadFile(filepath.Join(m.dir, file))
	if err != nil {
		return nil, false
	}
	var table dataset.Table
	if err := json.Unmarshal(data, &table); err != nil {
		m.log.Warn("corrupt cache file, ignoring",
			zap.String("file", file), zap.Error(err))
		return nil, false
	}
	m.memo.Add(file, &table)
	return &table, true
}

func (m *Manager) store(file string, table *dataset.Table) {
	data, err := json.Marshal(table)
	if err != nil {
		m.log.Warn("marshal cache table failed", zap.String("file", file), zap.Error(err))
		return
	}
	if err := os.WriteFile(filepath.Join(m.dir, file), data, 0o644); err != nil {
		m.log.Warn("write cache file failed", zap.String("file", file), zap.Error(err))
		return
	}
	m.memo.Add(file, table)
}
