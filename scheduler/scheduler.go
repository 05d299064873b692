// Package scheduler 按配置的每日时间点定时触发报告生成
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stockradar/config"
)

// Job 一次定时触发执行的任务
type Job func(now time.Time)

// Scheduler 包装 cron，支持运行中整体替换触发时间。
// A股时刻表只在交易所时区有意义，调度固定用上海时区。
type Scheduler struct {
	log *zap.Logger
	job Job
	loc *time.Location

	mu    sync.Mutex
	cron  *cron.Cron
	times []string
}

// New 创建调度器
func New(job Job, log *zap.Logger) *Scheduler {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.Local
	}
	return &Scheduler{log: log, job: job, loc: loc}
}

// Start 按给定时间点启动调度
func (s *Scheduler) Start(times []string) error {
	return s.Update(times)
}

// Update 整体替换触发时间点。校验失败时保持原调度不变。
func (s *Scheduler) Update(times []string) error {
	if err := config.ValidateTimes(times); err != nil {
		return err
	}

	next := cron.New(cron.WithLocation(s.loc))
	for _, t := range times {
		var hh, mm int
		fmt.Sscanf(t, "%d:%d", &hh, &mm)
		spec := fmt.Sprintf("%d %d * * *", mm, hh)
		if _, err := next.AddFunc(spec, func() { s.job(time.Now().In(s.loc)) }); err != nil {
			return fmt.Errorf("register schedule %q failed: %w", t, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = next
	s.times = append([]string(nil), times...)
	s.cron.Start()

	s.log.Info("schedule updated", zap.Strings("times", times))
	return nil
}

// RunNow 立即执行一次任务，不影响定时调度
func (s *Scheduler) RunNow() {
	s.job(time.Now().In(s.loc))
}

// Stop 停止调度，已在执行的任务跑完为止
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.cron = nil
	}
}

// Times 当前生效的触发时间点
func (s *Scheduler) Times() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.times...)
}
