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

type rootServiceFixture struct {
	rootRepo  *fakeRootRepo
	fieldRepo *fakeFieldRepo
	store     *fakeStore
	service   WordRootService
}

func newRootServiceFixture(t *testing.T) *rootServiceFixture {
	t.Helper()
	engine, err := tokenizer.NewEngine()
	require.NoError(t, err)

	f := &rootServiceFixture{
		rootRepo:  newFakeRootRepo(),
		fieldRepo: newFakeFieldRepo(),
		store:     newFakeStore(),
	}
	require.NoError(t, f.store.EnsureCollection(context.Background(), "word_roots", 4))
	sync := newTestSyncService(f.rootRepo, f.fieldRepo, f.store)
	f.service = NewWordRootService(f.rootRepo, f.fieldRepo, sync, engine)
	return f
}

func TestCreateRootRejectsEmptyName(t *testing.T) {
	f := newRootServiceFixture(t)
	_, _, err := f.service.Create(context.Background(), model.CreateWordRoot{CnName: "   "})
	assert.True(t, errs.IsValidation(err))
}

func TestCreateRootNormalizesSynonyms(t *testing.T) {
	f := newRootServiceFixture(t)
	root, synced, err := f.service.Create(context.Background(), model.CreateWordRoot{
		CnName:          " 客户 ",
		EnAbbr:          "cust",
		AssociatedTerms: "顾客，买方, 客商",
	})
	require.NoError(t, err)
	assert.True(t, synced)
	assert.Equal(t, "客户", root.CnName)
	assert.Equal(t, "顾客 买方 客商", root.AssociatedTerms)
	assert.Contains(t, f.store.points["word_roots"], root.ID)
}

func TestCreateRootRejectsDuplicateName(t *testing.T) {
	f := newRootServiceFixture(t)
	ctx := context.Background()
	_, _, err := f.service.Create(ctx, model.CreateWordRoot{CnName: "金额"})
	require.NoError(t, err)

	_, _, err = f.service.Create(ctx, model.CreateWordRoot{CnName: "金额"})
	assert.True(t, errs.IsValidation(err))
}

func TestCreateRootDegradesWhenVectorStoreFails(t *testing.T) {
	f := newRootServiceFixture(t)
	f.store.failUpsert = true

	root, synced, err := f.service.Create(context.Background(), model.CreateWordRoot{CnName: "币种"})
	require.NoError(t, err)
	assert.False(t, synced)

	// 关系库写入不回滚
	stored, err := f.rootRepo.FindByID(root.ID)
	require.NoError(t, err)
	assert.Equal(t, "币种", stored.CnName)
}

func TestDeleteRootRejectedWhileReferenced(t *testing.T) {
	f := newRootServiceFixture(t)
	ctx := context.Background()
	root, _, err := f.service.Create(ctx, model.CreateWordRoot{CnName: "客户"})
	require.NoError(t, err)
	require.NoError(t, f.fieldRepo.Create(&model.StandardField{
		FieldCnName:    "客户名称",
		FieldEnName:    "cust_name",
		CompositionIDs: model.IDList{root.ID},
	}))

	_, err = f.service.Delete(ctx, root.ID)
	require.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "客户名称")

	// 词根仍在
	_, err = f.rootRepo.FindByID(root.ID)
	assert.NoError(t, err)
}

func TestDeleteRootRemovesVectorPoint(t *testing.T) {
	f := newRootServiceFixture(t)
	ctx := context.Background()
	root, _, err := f.service.Create(ctx, model.CreateWordRoot{CnName: "日期"})
	require.NoError(t, err)
	require.Contains(t, f.store.points["word_roots"], root.ID)

	synced, err := f.service.Delete(ctx, root.ID)
	require.NoError(t, err)
	assert.True(t, synced)
	assert.NotContains(t, f.store.points["word_roots"], root.ID)
}

func TestDeleteRootNotFound(t *testing.T) {
	f := newRootServiceFixture(t)
	_, err := f.service.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestBatchImportReportsPerRowErrors(t *testing.T) {
	f := newRootServiceFixture(t)
	ctx := context.Background()
	_, _, err := f.service.Create(ctx, model.CreateWordRoot{CnName: "金额"})
	require.NoError(t, err)

	result, err := f.service.BatchImport(ctx, []model.CreateWordRoot{
		{CnName: "客户"},
		{CnName: "金额"}, // 与已有词根重复
		{CnName: ""},
		{CnName: "日期"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 2, result.FailureCount)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "行 2: 词根 [金额] 失败:")
	assert.Contains(t, result.Errors[1], "行 3:")
}

func TestUpdateRootResyncsVector(t *testing.T) {
	f := newRootServiceFixture(t)
	ctx := context.Background()
	root, _, err := f.service.Create(ctx, model.CreateWordRoot{CnName: "客户", EnAbbr: "cust"})
	require.NoError(t, err)

	updated, synced, err := f.service.Update(ctx, root.ID, model.CreateWordRoot{
		CnName: "客户方",
		EnAbbr: "cust",
	})
	require.NoError(t, err)
	assert.True(t, synced)
	assert.Equal(t, "客户方", updated.CnName)
	assert.Equal(t, "客户方", f.store.points["word_roots"][root.ID]["cn_name"])
}

func TestClearAllRejectedWhileFieldsReferenceRoots(t *testing.T) {
	f := newRootServiceFixture(t)
	ctx := context.Background()
	root, _, err := f.service.Create(ctx, model.CreateWordRoot{CnName: "客户"})
	require.NoError(t, err)
	require.NoError(t, f.fieldRepo.Create(&model.StandardField{
		FieldCnName:    "客户名称",
		FieldEnName:    "cust_name",
		CompositionIDs: model.IDList{root.ID},
	}))

	err = f.service.ClearAll(ctx)
	require.True(t, errs.IsValidation(err))

	// 词根数据保持不变
	roots, err := f.rootRepo.FindAll()
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}

func TestClearAllTruncatesAndRebuildsCollection(t *testing.T) {
	f := newRootServiceFixture(t)
	ctx := context.Background()
	_, _, err := f.service.Create(ctx, model.CreateWordRoot{CnName: "金额"})
	require.NoError(t, err)

	require.NoError(t, f.service.ClearAll(ctx))
	roots, err := f.rootRepo.FindAll()
	require.NoError(t, err)
	assert.Empty(t, roots)
	assert.Empty(t, f.store.points["word_roots"])
}
