// Package embedding provides a client for interacting with embedding models.
package embedding

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"datastd-go/internal/errs"
	"datastd-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

// Service 包装单个 embedding 模型实例并串行化所有推理调用。
// 互斥锁仅覆盖推理调用本身，绝不跨越向量库 I/O 持有，
// 避免一次远端延迟抖动演变为全局请求阻塞。
type Service struct {
	client Client
	dim    int

	mu sync.Mutex // 保护对模型实例的并发访问

	// rdb 为可选的 text->vector 缓存，nil 时关闭缓存。
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewService 创建一个 embedding 服务。rdb 传 nil 则不启用缓存。
func NewService(client Client, dim int, rdb *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{
		client:   client,
		dim:      dim,
		rdb:      rdb,
		cacheTTL: cacheTTL,
	}
}

// Dimensions 返回模型输出向量的固定维度。
func (s *Service) Dimensions() int {
	return s.dim
}

// Embed 将文本映射为定长向量，相同输入返回相同向量。
// 失败时返回包装了 errs.ErrEmbedding 的错误，绝不返回残缺向量。
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	cacheKey := fmt.Sprintf("emb:%x", md5.Sum([]byte(text)))

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var vec []float32
			if err := json.Unmarshal(cached, &vec); err == nil && len(vec) == s.dim {
				return vec, nil
			}
		}
	}

	s.mu.Lock()
	vec, err := s.client.CreateEmbedding(ctx, text)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEmbedding, err)
	}
	if len(vec) != s.dim {
		return nil, fmt.Errorf("%w: 模型返回维度 %d, 期望 %d", errs.ErrEmbedding, len(vec), s.dim)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(vec); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
				log.Warnf("[EmbeddingService] 写入向量缓存失败: %v", err)
			}
		}
	}
	return vec, nil
}
