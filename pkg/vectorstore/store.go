// Package vectorstore 提供了对外部向量库的统一客户端契约。
// 所有操作以 (collection, id) 寻址；upsert/delete 均幂等。
package vectorstore

import (
	"context"
	"fmt"

	"datastd-go/internal/config"
)

// ScoredPoint 是一次近邻检索返回的单个点，按相似度降序排列。
type ScoredPoint struct {
	ID      uint
	Score   float32
	Payload map[string]string
}

// Store 定义了向量库客户端接口。
type Store interface {
	// EnsureCollection 幂等地确保集合存在，维度为 dim，余弦相似度。
	EnsureCollection(ctx context.Context, name string, dim int) error
	// UpsertPoint 插入或替换一个点，payload 镜像实体的展示字段。
	UpsertPoint(ctx context.Context, collection string, id uint, vector []float32, payload map[string]string) error
	// DeletePoint 删除一个点，点不存在不算错误。
	DeletePoint(ctx context.Context, collection string, id uint) error
	// DropCollection 删除整个集合，集合不存在不算错误。
	DropCollection(ctx context.Context, name string) error
	// Search 在集合中检索与 vector 最相近的 topK 个点。
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]ScoredPoint, error)
}

// New 根据配置中的驱动名创建对应的 Store 实现。
func New(cfg config.VectorConfig, qdrantCfg config.QdrantConfig, esCfg config.ElasticsearchConfig) (Store, error) {
	switch cfg.Driver {
	case "qdrant", "":
		return NewQdrantStore(qdrantCfg)
	case "elasticsearch":
		return NewESStore(esCfg)
	}
	return nil, fmt.Errorf("未知的向量库驱动: %s", cfg.Driver)
}
