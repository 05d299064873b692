// Package config 提供配置加载、校验与持久化
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v2"
)

// Config 服务配置
type Config struct {
	Http struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Dirs struct {
		Cache   string `yaml:"cache"`
		Data    string `yaml:"data"`
		Reports string `yaml:"reports"`
	} `yaml:"dirs"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Schedule struct {
		Times []string `yaml:"times"` // 每天触发的时间点，24小时制 HH:MM
	} `yaml:"schedule"`
	// Symbols 指数实时行情兜底源的订阅代码（新浪格式）
	Symbols []string `yaml:"symbols"`
	LLM struct {
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		Endpoint string `yaml:"endpoint"`
		Timeout  int    `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	Analysis Analysis `yaml:"analysis"`
}

// Analysis 分析阈值参数。
// 这些经验常数缺乏文档出处，按配置项处理而不是写死在代码里。
type Analysis struct {
	ReferenceTurnover float64 `yaml:"reference_turnover"` // 成交额定性基准（亿元）
	VolumeLowRatio    float64 `yaml:"volume_low_ratio"`   // 低于基准的倍数视为地量
	VolumeNormalRatio float64 `yaml:"volume_normal_ratio"`
	VolumeHighRatio   float64 `yaml:"volume_high_ratio"`
	LeverageMedium    float64 `yaml:"leverage_medium"` // 杠杆率分档（%）
	LeverageElevated  float64 `yaml:"leverage_elevated"`
	LeverageRisk      float64 `yaml:"leverage_risk"`
	BreakRateWarn     float64 `yaml:"break_rate_warn"` // 炸板率预警线（%）
	MinETFTurnover    float64 `yaml:"min_etf_turnover"` // ETF 入选的最低成交额（元）
	Workers           int     `yaml:"workers"`          // 技术面扫描并发数
}

// Default 默认配置
func Default() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8080
	cfg.Http.AllowedOrigins = []string{"*"}
	cfg.Dirs.Cache = "cache"
	cfg.Dirs.Data = "data"
	cfg.Dirs.Reports = "reports"
	cfg.Log.Level = "info"
	cfg.Schedule.Times = []string{"09:25", "12:30", "15:10"}
	cfg.Symbols = []string{"s_sh000001", "s_sz399001", "s_sz399006"}
	cfg.LLM.Endpoint = "https://ark.cn-beijing.volces.com/api/v3/chat/completions"
	cfg.LLM.Timeout = 30
	cfg.Analysis = Analysis{
		ReferenceTurnover: 10000,
		VolumeLowRatio:    0.7,
		VolumeNormalRatio: 1.5,
		VolumeHighRatio:   2.5,
		LeverageMedium:    1.8,
		LeverageElevated:  2.2,
		LeverageRisk:      2.5,
		BreakRateWarn:     35,
		MinETFTurnover:    5e7,
		Workers:           5,
	}
	return cfg
}

// Load 从文件加载配置，文件不存在时写出默认配置
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config failed: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config failed: %w", err)
	}
	if err := ValidateTimes(cfg.Schedule.Times); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save 持久化配置
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ValidateTimes 校验调度时间点格式（HH:MM）
func ValidateTimes(times []string) error {
	for _, t := range times {
		if _, err := time.Parse("15:04", t); err != nil {
			return fmt.Errorf("invalid schedule time %q, expect HH:MM", t)
		}
	}
	return nil
}

// Manager 持有当前配置并保证并发读写安全
type Manager struct {
	mu   sync.RWMutex
	path string
	cfg  *Config
}

// NewManager 创建配置管理器
func NewManager(path string, cfg *Config) *Manager {
	return &Manager{path: path, cfg: cfg}
}

// Current 返回当前配置快照
func (m *Manager) Current() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// UpdateSchedule 更新调度时间并落盘
func (m *Manager) UpdateSchedule(times []string) (*Config, error) {
	if err := ValidateTimes(times); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := *m.cfg
	next.Schedule.Times = append([]string(nil), times...)
	if err := next.Save(m.path); err != nil {
		return nil, err
	}
	m.cfg = &next
	return &next, nil
}

// Replace 整体替换配置（热加载路径）
func (m *Manager) Replace(cfg *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// Path 配置文件路径
func (m *Manager) Path() string {
	return m.path
}
