package service

import (
	"context"
	"testing"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/pkg/tokenizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMappingFixture(t *testing.T, roots ...model.WordRoot) (MappingService, *fakeTaskRepo) {
	t.Helper()
	rootRepo := newFakeRootRepo()
	var terms []string
	for i := range roots {
		root := roots[i]
		require.NoError(t, rootRepo.Create(&root))
		terms = append(terms, root.CnName)
		terms = append(terms, root.Terms()...)
	}

	engine, err := tokenizer.NewEngine()
	require.NoError(t, err)
	require.NoError(t, engine.Load(terms))

	taskRepo := newFakeTaskRepo()
	return NewMappingService(rootRepo, taskRepo, engine), taskRepo
}

func TestSuggestRootsWholePhraseWins(t *testing.T) {
	svc, _ := newMappingFixture(t,
		model.WordRoot{CnName: "客户名称", EnAbbr: "cust_name"},
		model.WordRoot{CnName: "客户", EnAbbr: "cust"},
		model.WordRoot{CnName: "名称", EnAbbr: "name"},
	)

	segments, err := svc.SuggestRoots(context.Background(), "客户名称")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "客户名称", segments[0].Word)
	require.Len(t, segments[0].Candidates, 1)
	assert.Equal(t, "cust_name", segments[0].Candidates[0].EnAbbr)
}

func TestSuggestRootsSegmentsAndLooksUpEachToken(t *testing.T) {
	svc, _ := newMappingFixture(t,
		model.WordRoot{CnName: "客户", EnAbbr: "cust"},
		model.WordRoot{CnName: "名称", EnAbbr: "name"},
	)

	segments, err := svc.SuggestRoots(context.Background(), "客户名称")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "客户", segments[0].Word)
	assert.Equal(t, "名称", segments[1].Word)
	require.Len(t, segments[0].Candidates, 1)
	assert.Equal(t, "cust", segments[0].Candidates[0].EnAbbr)
}

func TestSuggestRootsMatchesSynonyms(t *testing.T) {
	svc, _ := newMappingFixture(t,
		model.WordRoot{CnName: "客户", EnAbbr: "cust", AssociatedTerms: "顾客 买方"},
	)

	segments, err := svc.SuggestRoots(context.Background(), "顾客")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	require.Len(t, segments[0].Candidates, 1)
	assert.Equal(t, "客户", segments[0].Candidates[0].CnName)
}

func TestSuggestRootsUnmatchedTokenHasNoCandidates(t *testing.T) {
	svc, _ := newMappingFixture(t,
		model.WordRoot{CnName: "名称", EnAbbr: "name"},
	)

	segments, err := svc.SuggestRoots(context.Background(), "订单名称")
	require.NoError(t, err)
	require.NotEmpty(t, segments)

	last := segments[len(segments)-1]
	assert.Equal(t, "名称", last.Word)
	assert.Len(t, last.Candidates, 1)
	for _, seg := range segments[:len(segments)-1] {
		assert.Empty(t, seg.Candidates)
	}
}

func TestSuggestRootsNormalizesWidthAndCase(t *testing.T) {
	svc, _ := newMappingFixture(t,
		model.WordRoot{CnName: "客户", EnAbbr: "cust", AssociatedTerms: "cust 顾客"},
	)

	// 全角大写输入归一为半角小写后命中英文同义词
	segments, err := svc.SuggestRoots(context.Background(), "ＣＵＳＴ")
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "cust", segments[0].Word)
	require.Len(t, segments[0].Candidates, 1)
	assert.Equal(t, "客户", segments[0].Candidates[0].CnName)
}

func TestSuggestRootsRejectsEmptyInput(t *testing.T) {
	svc, _ := newMappingFixture(t)
	_, err := svc.SuggestRoots(context.Background(), "  ")
	assert.True(t, errs.IsValidation(err))
}

func TestSubmitAndProcessTask(t *testing.T) {
	svc, _ := newMappingFixture(t)

	task, err := svc.SubmitTask(" 客户联系电话 ", "业务一部")
	require.NoError(t, err)
	assert.Equal(t, "客户联系电话", task.FieldName)
	assert.False(t, task.Processed)

	count, err := svc.CountUnprocessedTasks()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	processed, err := svc.MarkTaskProcessed(task.ID)
	require.NoError(t, err)
	assert.True(t, processed.Processed)

	count, err = svc.CountUnprocessedTasks()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestMarkTaskProcessedNotFound(t *testing.T) {
	svc, _ := newMappingFixture(t)
	_, err := svc.MarkTaskProcessed(99)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
