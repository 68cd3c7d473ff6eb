package service

import (
	"context"
	"testing"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/pkg/vectorstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchFixture() (*fakeFieldRepo, *fakeEmbedder, *fakeStore, SearchService) {
	fieldRepo := newFakeFieldRepo()
	embedder := newFakeEmbedder()
	store := newFakeStore()
	svc := NewSearchService(fieldRepo, embedder, store, testVecCfg)
	return fieldRepo, embedder, store, svc
}

func TestSearchFieldsLexicalHitSkipsVectorSearch(t *testing.T) {
	fieldRepo, embedder, _, svc := newSearchFixture()
	require.NoError(t, fieldRepo.Create(&model.StandardField{
		FieldCnName: "客户名称", FieldEnName: "cust_name",
	}))

	results, err := svc.SearchFields(context.Background(), "客户")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "客户名称", results[0].FieldCnName)
	// 词面命中不携带相似度分数，也不触发向量推理
	assert.Nil(t, results[0].Score)
	assert.Zero(t, embedder.calls)
}

func TestSearchFieldsFallsBackToVector(t *testing.T) {
	_, embedder, store, svc := newSearchFixture()
	store.searchResults = []vectorstore.ScoredPoint{
		{ID: 3, Score: 0.92, Payload: map[string]string{"cn_name": "客户名称", "en_name": "cust_name"}},
		{ID: 8, Score: 0.81, Payload: map[string]string{"cn_name": "客户编号", "en_name": "cust_no"}},
	}

	results, err := svc.SearchFields(context.Background(), "买家称呼")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, embedder.calls)

	assert.Equal(t, uint(3), results[0].ID)
	require.NotNil(t, results[0].Score)
	assert.InDelta(t, 0.92, float64(*results[0].Score), 1e-6)
	require.NotNil(t, results[1].Score)
	assert.InDelta(t, 0.81, float64(*results[1].Score), 1e-6)
}

func TestSearchFieldsNormalizesQuery(t *testing.T) {
	fieldRepo, _, _, svc := newSearchFixture()
	require.NoError(t, fieldRepo.Create(&model.StandardField{
		FieldCnName: "客户名称", FieldEnName: "cust_name",
	}))

	// 全角大写查询归一为半角小写后命中英文名
	results, err := svc.SearchFields(context.Background(), "ＣＵＳＴ")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cust_name", results[0].FieldEnName)
}

func TestSearchFieldsRejectsEmptyQuery(t *testing.T) {
	_, _, _, svc := newSearchFixture()
	_, err := svc.SearchFields(context.Background(), "   ")
	assert.True(t, errs.IsValidation(err))
}

func TestSearchFieldsPropagatesEmbeddingFailure(t *testing.T) {
	_, embedder, _, svc := newSearchFixture()
	embedder.failOn["冷门查询"] = true

	_, err := svc.SearchFields(context.Background(), "冷门查询")
	assert.Error(t, err)
}

func TestSimilarRootsAlwaysSemantic(t *testing.T) {
	fieldRepo, embedder, store, svc := newSearchFixture()
	// 即使词面可以命中，相近词根检索也不走词面
	require.NoError(t, fieldRepo.Create(&model.StandardField{
		FieldCnName: "金额", FieldEnName: "amt",
	}))
	store.searchResults = []vectorstore.ScoredPoint{
		{ID: 1, Score: 0.95, Payload: map[string]string{"cn_name": "金额", "en_abbr": "amt"}},
		{ID: 2, Score: 0.77, Payload: map[string]string{"cn_name": "币种", "en_abbr": "ccy"}},
	}

	results, err := svc.SimilarRoots(context.Background(), "金额", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, "amt", results[0].EnAbbr)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSimilarRootsHonorsTopK(t *testing.T) {
	_, _, store, svc := newSearchFixture()
	store.searchResults = []vectorstore.ScoredPoint{
		{ID: 1, Score: 0.9, Payload: map[string]string{"cn_name": "金额"}},
		{ID: 2, Score: 0.8, Payload: map[string]string{"cn_name": "币种"}},
		{ID: 3, Score: 0.7, Payload: map[string]string{"cn_name": "汇率"}},
	}

	results, err := svc.SimilarRoots(context.Background(), "金额", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
