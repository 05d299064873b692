// Package industry 构建股票代码到行业名称的映射
package industry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stockradar/cache"
	"stockradar/dataset"
	"stockradar/feed"
)

// Builder 按行业板块逐个抓取成分股，拼成 代码→行业 映射。
// 板块有八九十个，整轮抓取开销不小，结果按日缓存。
type Builder struct {
	em    *feed.EastmoneyClient
	cache *cache.Manager
	log   *zap.Logger
	pause time.Duration
}

// NewBuilder 创建行业映射构建器
func NewBuilder(em *feed.EastmoneyClient, c *cache.Manager, log *zap.Logger) *Builder {
	return &Builder{em: em, cache: c, log: log, pause: 150 * time.Millisecond}
}

// Map 返回当日的 代码→行业 映射。
// 单个板块抓取失败只跳过该板块，不影响其余板块。
func (b *Builder) Map(ctx context.Context) map[string]string {
	table := b.cache.Fetch(ctx, "industry_map", nil, cache.Daily, b.build)

	out := make(map[string]string, table.Len())
	codeCol := table.ColumnIndex("代码")
	indCol := table.ColumnIndex("行业")
	if codeCol == dataset.ColNotFound || indCol == dataset.ColNotFound {
		return out
	}
	for i := 0; i < table.Len(); i++ {
		out[table.Cell(i, codeCol)] = table.Cell(i, indCol)
	}
	return out
}

func (b *Builder) build(ctx context.Context) (*dataset.Table, error) {
	boards, err := b.em.IndustryBoards(ctx)
	if err != nil {
		return nil, err
	}

	codeCol := boards.ColumnIndex("板块代码")
	nameCol := boards.ColumnIndex("板块名称")
	result := dataset.New("代码", "行业")

	for i := 0; i < boards.Len(); i++ {
		boardCode := boards.Cell(i, codeCol)
		boardName := boards.Cell(i, nameCol)

		members, err := b.em.IndustryConstituents(ctx, boardCode)
		if err != nil {
			b.log.Warn("fetch board constituents failed, skipping",
				zap.String("board", boardName), zap.Error(err))
			continue
		}
		memberCol := members.ColumnIndex("代码")
		for j := 0; j < members.Len(); j++ {
			result.AppendRow(members.Cell(j, memberCol), boardName)
		}

		select {
		case <-ctx.Done():
			return result, nil
		case <-time.After(b.pause):
		}
	}
	b.log.Info("industry map built",
		zap.Int("boards", boards.Len()), zap.Int("stocks", result.Len()))
	return result, nil
}
