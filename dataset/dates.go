package dataset

import "time"

var dateLayouts = []string{"2006-01-02", "20060102", "2006-01-02 15:04:05", "2006/01/02"}

// ParseDate 解析常见日期格式，失败返回零值
func ParseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MaxDate 返回指定列中的最大日期，空表或无法解析时返回零值
func (t *Table) MaxDate(col int) time.Time {
	var max time.Time
	if t == nil || col < 0 {
		return max
	}
	for i := range t.Rows {
		if d := ParseDate(t.Cell(i, col)); d.After(max) {
			max = d
		}
	}
	return max
}
