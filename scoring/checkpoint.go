package scoring

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Checkpoint 技术面扫描的断点续传存储。
// 每只标的分析成功后立即落库，进程重启后跳过已完成的标的。
type Checkpoint struct {
	db *sql.DB
}

// OpenCheckpoint 打开（必要时建表）断点数据库
func OpenCheckpoint(path string) (*Checkpoint, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint db failed: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS scan_progress (
	scan_date TEXT NOT NULL,
	code      TEXT NOT NULL,
	payload   TEXT NOT NULL,
	PRIMARY KEY (scan_date, code)
)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init checkpoint schema failed: %w", err)
	}
	return &Checkpoint{db: db}, nil
}

// Load 读取指定日期已完成的全部结果
func (c *Checkpoint) Load(date string) (map[string]TechResult, error) {
	rows, err := c.db.Query(
		`SELECT code, payload FROM scan_progress WHERE scan_date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint failed: %w", err)
	}
	defer rows.Close()

	out := make(map[string]TechResult)
	for rows.Next() {
		var code, payload string
		if err := rows.Scan(&code, &payload); err != nil {
			return nil, err
		}
		var r TechResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			// 坏记录跳过，重扫该标的即可
			continue
		}
		out[code] = r
	}
	return out, rows.Err()
}

// Save 持久化单只标的的结果，同键覆盖
func (c *Checkpoint) Save(date string, r TechResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = c.db.Exec(
		`INSERT OR REPLACE INTO scan_progress (scan_date, code, payload) VALUES (?, ?, ?)`,
		date, r.Code, string(payload))
	if err != nil {
		return fmt.Errorf("save checkpoint failed: %w", err)
	}
	return nil
}

// Close 关闭数据库
func (c *Checkpoint) Close() error {
	return c.db.Close()
}
