package config

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch 监听配置文件变更并热加载。
// 编辑器保存经常触发多个事件，这里只关心写入/创建；
// 解析失败时保留旧配置继续运行。
func (m *Manager) Watch(log *zap.Logger, onChange func(*Config)) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(m.path); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := Load(m.path)
				if err != nil {
					log.Warn("config reload failed, keeping previous config",
						zap.String("path", m.path), zap.Error(err))
					continue
				}
				m.Replace(cfg)
				log.Info("config reloaded", zap.Strings("schedule", cfg.Schedule.Times))
				if onChange != nil {
					onChange(cfg)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return watcher.Close, nil
}
