// Package dataset 提供轻量级表格数据结构，作为各数据源返回结果的统一载体。
package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ColNotFound 列不存在时的哨兵下标
const ColNotFound = -1

// Table 表格数据：有序列名 + 字符串单元格。
// 上游接口返回的列名经常漂移，所以单元格统一存字符串，
// 数值解析推迟到使用方，解析失败得到 NaN 而不是错误。
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// New 创建空表
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Empty 判断表是否为空（nil 表视为空）
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Len 行数
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// AppendRow 追加一行，不足列数的单元格补空串
func (t *Table) AppendRow(cells ...string) {
	row := make([]string, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// ColumnIndex 查找列下标，不存在返回 ColNotFound
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return ColNotFound
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return ColNotFound
}

// PickColumn 从候选列名中选出第一个存在的列。
// 上游经常改名，调用方给出按优先级排列的候选集；
// 全部缺失返回 ColNotFound，由调用方降级为"未知"而不是报错。
func PickColumn(t *Table, candidates ...string) (int, bool) {
	if t == nil {
		return ColNotFound, false
	}
	for _, c := range candidates {
		if idx := t.ColumnIndex(c); idx != ColNotFound {
			return idx, true
		}
	}
	return ColNotFound, false
}

// Cell 取单元格，越界返回空串
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Float 取单元格数值，解析失败返回 NaN
func (t *Table) Float(row, col int) float64 {
	return ParseFloat(t.Cell(row, col))
}

// ColumnFloats 取整列数值，逐格解析，失败为 NaN
func (t *Table) ColumnFloats(col int) []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i := range t.Rows {
		out[i] = t.Float(i, col)
	}
	return out
}

// SortByColumn 按指定列字典序升序排序（日期列 YYYY-MM-DD / YYYYMMDD 均适用）
func (t *Table) SortByColumn(col int) {
	if t == nil || col < 0 {
		return
	}
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Cell(i, col) < t.Cell(j, col)
	})
}

// DedupeKeepLast 按指定列去重，保留最后一次出现的行，行序保持首次出现的位置
func (t *Table) DedupeKeepLast(col int) {
	if t == nil || col < 0 {
		return
	}
	last := make(map[string]int, len(t.Rows))
	for i := range t.Rows {
		last[t.Cell(i, col)] = i
	}
	rows := t.Rows[:0]
	for i := range t.Rows {
		if last[t.Cell(i, col)] == i {
			rows = append(rows, t.Rows[i])
		}
	}
	t.Rows = rows
}

// AppendTable 按列名对齐追加另一张表的所有行，other 缺失的列补空串
func (t *Table) AppendTable(other *Table) {
	if t == nil || other.Empty() {
		return
	}
	mapping := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		mapping[i] = other.ColumnIndex(c)
	}
	for r := range other.Rows {
		row := make([]string, len(t.Columns))
		for i, src := range mapping {
			if src != ColNotFound {
				row[i] = other.Cell(r, src)
			}
		}
		t.Rows = append(t.Rows, row)
	}
}

// ParseFloat 宽松的数值解析：容忍百分号、千分位与空白，失败返回 NaN
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// FormatFloat 数值写回单元格时的统一格式
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PercentileRank 百分位排名（0-100）。并列值取平均名次，与常见统计库口径一致；
// NaN 不参与排名，对应位置返回 NaN。
func PercentileRank(values []float64) []float64 {
	type indexed struct {
		v   float64
		pos int
	}
	valid := make([]indexed, 0, len(values))
	for i, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, indexed{v, i})
		}
	}
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(valid) == 0 {
		return out
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].v < valid[j].v })
	n := float64(len(valid))
	for i := 0; i < len(valid); {
		j := i
		for j < len(valid) && valid[j].v == valid[i].v {
			j++
		}
		// 并列区间 [i,j) 的平均名次（名次从 1 开始）
		avgRank := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			out[valid[k].pos] = avgRank / n * 100
		}
		i = j
	}
	return out
}
