package service

import (
	"context"

	"datastd-go/internal/config"
	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/internal/repository"
	"datastd-go/pkg/vectorstore"
)

// 检索结果条数：词面命中至多 10 条，向量兜底与相近词根至多 5 条。
const (
	lexicalLimit = 10
	semanticTopK = 5
)

// SearchService 接口定义了面向业务方的检索操作。
type SearchService interface {
	// SearchFields 搜索标准字段：词面优先，未命中时走向量语义兜底。
	// 词面命中 Score 为 nil，语义命中 Score 为相似度，按分数降序。
	SearchFields(ctx context.Context, q string) ([]model.FieldSearchResult, error)
	// SimilarRoots 纯语义检索与查询词相近的词根，topK 非正时取默认值。
	SimilarRoots(ctx context.Context, q string, topK int) ([]model.RootSuggestion, error)
}

type searchService struct {
	fieldRepo repository.StandardFieldRepository
	embedder  Embedder
	store     vectorstore.Store
	vecCfg    config.VectorConfig
}

// NewSearchService 创建一个新的 SearchService 实例。
func NewSearchService(
	fieldRepo repository.StandardFieldRepository,
	embedder Embedder,
	store vectorstore.Store,
	vecCfg config.VectorConfig,
) SearchService {
	return &searchService{fieldRepo: fieldRepo, embedder: embedder, store: store, vecCfg: vecCfg}
}

// SearchFields 实行两级检索。词面阶段只依赖关系库，
// 向量阶段需要推理与向量库，二者任一失败时整体报错而不静默降级。
func (s *searchService) SearchFields(ctx context.Context, q string) ([]model.FieldSearchResult, error) {
	norm := normalizeQuery(q)
	if norm == "" {
		return nil, errs.NewValidation("查询词不能为空")
	}

	lexical, err := s.fieldRepo.SearchLexical(norm, lexicalLimit)
	if err != nil {
		return nil, err
	}
	if len(lexical) > 0 {
		results := make([]model.FieldSearchResult, 0, len(lexical))
		for i := range lexical {
			results = append(results, model.FieldSearchResult{
				ID:          lexical[i].ID,
				FieldCnName: lexical[i].FieldCnName,
				FieldEnName: lexical[i].FieldEnName,
			})
		}
		return results, nil
	}

	vec, err := s.embedder.Embed(ctx, norm)
	if err != nil {
		return nil, err
	}
	hits, err := s.store.Search(ctx, s.vecCfg.FieldCollection, vec, semanticTopK)
	if err != nil {
		return nil, err
	}
	results := make([]model.FieldSearchResult, 0, len(hits))
	for _, hit := range hits {
		score := hit.Score
		results = append(results, model.FieldSearchResult{
			ID:          hit.ID,
			FieldCnName: hit.Payload["cn_name"],
			FieldEnName: hit.Payload["en_name"],
			Score:       &score,
		})
	}
	return results, nil
}

// SimilarRoots 直接在词根集合上做近邻检索，结果按相似度降序。
func (s *searchService) SimilarRoots(ctx context.Context, q string, topK int) ([]model.RootSuggestion, error) {
	norm := normalizeQuery(q)
	if norm == "" {
		return nil, errs.NewValidation("查询词不能为空")
	}
	if topK <= 0 {
		topK = semanticTopK
	}

	vec, err := s.embedder.Embed(ctx, norm)
	if err != nil {
		return nil, err
	}
	hits, err := s.store.Search(ctx, s.vecCfg.RootCollection, vec, topK)
	if err != nil {
		return nil, err
	}
	results := make([]model.RootSuggestion, 0, len(hits))
	for _, hit := range hits {
		results = append(results, model.RootSuggestion{
			ID:     hit.ID,
			CnName: hit.Payload["cn_name"],
			EnAbbr: hit.Payload["en_abbr"],
			Score:  hit.Score,
		})
	}
	return results, nil
}
