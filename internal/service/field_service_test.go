package service

import (
	"context"
	"testing"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fieldServiceFixture struct {
	rootRepo  *fakeRootRepo
	fieldRepo *fakeFieldRepo
	store     *fakeStore
	service   FieldService
}

func newFieldServiceFixture(t *testing.T) *fieldServiceFixture {
	t.Helper()
	f := &fieldServiceFixture{
		rootRepo:  newFakeRootRepo(),
		fieldRepo: newFakeFieldRepo(),
		store:     newFakeStore(),
	}
	require.NoError(t, f.store.EnsureCollection(context.Background(), "standard_fields", 4))
	sync := newTestSyncService(f.rootRepo, f.fieldRepo, f.store)
	f.service = NewFieldService(f.fieldRepo, f.rootRepo, sync)
	return f
}

func TestCreateFieldRejectsUnknownRootID(t *testing.T) {
	f := newFieldServiceFixture(t)
	require.NoError(t, f.rootRepo.Create(&model.WordRoot{CnName: "客户"}))

	_, _, err := f.service.Create(context.Background(), model.CreateFieldRequest{
		FieldCnName:    "客户名称",
		FieldEnName:    "cust_name",
		CompositionIDs: []uint{1, 99},
	})
	require.True(t, errs.IsValidation(err))
	assert.Contains(t, err.Error(), "99")

	// 校验失败不产生任何写入
	fields, _ := f.fieldRepo.FindAll()
	assert.Empty(t, fields)
}

func TestCreateFieldSyncsVector(t *testing.T) {
	f := newFieldServiceFixture(t)
	require.NoError(t, f.rootRepo.Create(&model.WordRoot{CnName: "客户"}))
	require.NoError(t, f.rootRepo.Create(&model.WordRoot{CnName: "名称"}))

	field, synced, err := f.service.Create(context.Background(), model.CreateFieldRequest{
		FieldCnName:     "客户名称",
		FieldEnName:     "cust_name",
		CompositionIDs:  []uint{1, 2},
		AssociatedTerms: "客户姓名，客名",
	})
	require.NoError(t, err)
	assert.True(t, synced)
	assert.Equal(t, "客户姓名 客名", field.AssociatedTerms)
	assert.Equal(t, "客户名称", f.store.points["standard_fields"][field.ID]["cn_name"])
	assert.Equal(t, "cust_name", f.store.points["standard_fields"][field.ID]["en_name"])
}

func TestGetDetailsPreservesCompositionOrder(t *testing.T) {
	f := newFieldServiceFixture(t)
	require.NoError(t, f.rootRepo.Create(&model.WordRoot{CnName: "客户"}))
	require.NoError(t, f.rootRepo.Create(&model.WordRoot{CnName: "名称"}))

	field, _, err := f.service.Create(context.Background(), model.CreateFieldRequest{
		FieldCnName:    "名称客户",
		FieldEnName:    "name_cust",
		CompositionIDs: []uint{2, 1},
	})
	require.NoError(t, err)

	roots, err := f.service.GetDetails(field.ID)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "名称", roots[0].CnName)
	assert.Equal(t, "客户", roots[1].CnName)
}

func TestDeleteFieldDegradesWhenVectorDeleteFails(t *testing.T) {
	f := newFieldServiceFixture(t)
	field, _, err := f.service.Create(context.Background(), model.CreateFieldRequest{
		FieldCnName: "备注",
		FieldEnName: "remark",
	})
	require.NoError(t, err)

	f.store.failDelete = true
	synced, err := f.service.Delete(context.Background(), field.ID)
	require.NoError(t, err)
	assert.False(t, synced)

	// 关系库删除生效
	_, err = f.fieldRepo.FindByID(field.ID)
	assert.Error(t, err)
}

func TestUpdateFieldNotFound(t *testing.T) {
	f := newFieldServiceFixture(t)
	_, _, err := f.service.Update(context.Background(), 42, model.CreateFieldRequest{
		FieldCnName: "备注",
		FieldEnName: "remark",
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
