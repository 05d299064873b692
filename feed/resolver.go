// Package feed 提供上游行情数据源适配器与按序回退的取数器
package feed

import (
	"context"

	"go.uber.org/zap"

	"stockradar/dataset"
)

// Candidate 候选取数操作。同一逻辑数据通常有多个上游接口可用，
// 接口会下线或改名，取数时按顺序逐个尝试。
type Candidate struct {
	Name  string
	Fetch func(ctx context.Context) (*dataset.Table, error)
}

// Resolver 按序尝试候选接口，返回第一个非空结果
type Resolver struct {
	log *zap.Logger
}

// NewResolver 创建取数器
func NewResolver(log *zap.Logger) *Resolver {
	return &Resolver{log: log}
}

// Resolve 依次调用候选接口，返回第一个取数成功且非空的表。
// 全部失败或为空时返回空表，绝不返回错误——单个数据源的故障
// 只应降级对应指标，不应让整轮分析失败。
func (r *Resolver) Resolve(ctx context.Context, candidates []Candidate) *dataset.Table {
	for _, c := range candidates {
		if c.Fetch == nil {
			continue
		}
		table, err := c.Fetch(ctx)
		if err != nil {
			r.log.Debug("feed candidate failed",
				zap.String("candidate", c.Name), zap.Error(err))
			continue
		}
		if !table.Empty() {
			return table
		}
		r.log.Debug("feed candidate returned empty table", zap.String("candidate", c.Name))
	}
	return &dataset.Table{}
}
