package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/internal/repository"
	"datastd-go/pkg/log"
	"datastd-go/pkg/tasks"

	"gorm.io/gorm"
)

// FieldService 接口定义了标准字段的业务操作。
type FieldService interface {
	Create(ctx context.Context, req model.CreateFieldRequest) (*model.StandardField, bool, error)
	Get(id uint) (*model.StandardField, error)
	// GetDetails 按 composition_ids 的顺序返回字段引用的词根明细。
	GetDetails(id uint) ([]model.WordRoot, error)
	List(page, pageSize int, q string) (*model.PaginatedResponse[model.StandardField], error)
	Update(ctx context.Context, id uint, req model.CreateFieldRequest) (*model.StandardField, bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	ClearAll(ctx context.Context) error
}

type fieldService struct {
	fieldRepo repository.StandardFieldRepository
	rootRepo  repository.WordRootRepository
	sync      SyncService
}

// NewFieldService 创建一个新的 FieldService 实例。
func NewFieldService(
	fieldRepo repository.StandardFieldRepository,
	rootRepo repository.WordRootRepository,
	sync SyncService,
) FieldService {
	return &fieldService{fieldRepo: fieldRepo, rootRepo: rootRepo, sync: sync}
}

// validateField 校验并规范化字段请求。
// composition_ids 中的每个词根必须存在，校验在任何写入之前完成。
func (s *fieldService) validateField(req *model.CreateFieldRequest) error {
	req.FieldCnName = strings.TrimSpace(req.FieldCnName)
	if req.FieldCnName == "" {
		return errs.NewValidation("字段中文名不能为空")
	}
	req.FieldEnName = strings.TrimSpace(req.FieldEnName)
	if req.FieldEnName == "" {
		return errs.NewValidation("字段英文名不能为空")
	}
	req.AssociatedTerms = normalizeTerms(req.AssociatedTerms)

	if len(req.CompositionIDs) == 0 {
		return nil
	}
	roots, err := s.rootRepo.FindBatchByIDs(req.CompositionIDs)
	if err != nil {
		return err
	}
	found := make(map[uint]bool, len(roots))
	for i := range roots {
		found[roots[i].ID] = true
	}
	for _, id := range req.CompositionIDs {
		if !found[id] {
			return errs.NewValidation(fmt.Sprintf("词根 ID %d 不存在", id))
		}
	}
	return nil
}

// syncFieldBestEffort 尝试同步字段向量，失败时降级：记录日志并投递补偿任务。
func (s *fieldService) syncFieldBestEffort(ctx context.Context, field *model.StandardField) bool {
	if err := s.sync.SyncField(ctx, field); err != nil {
		log.Errorf("[SyncService] 标准字段 [%s] (ID: %d) 向量同步失败, 关系库已写入: %v", field.FieldCnName, field.ID, err)
		s.sync.EnqueueRepair(tasks.VectorSyncTask{Kind: tasks.KindField, Action: tasks.ActionUpsert, ID: field.ID})
		return false
	}
	return true
}

// Create 创建标准字段并同步向量。
func (s *fieldService) Create(ctx context.Context, req model.CreateFieldRequest) (*model.StandardField, bool, error) {
	if err := s.validateField(&req); err != nil {
		return nil, false, err
	}
	field := &model.StandardField{
		FieldCnName:     req.FieldCnName,
		FieldEnName:     req.FieldEnName,
		CompositionIDs:  model.IDList(req.CompositionIDs),
		DataType:        req.DataType,
		AssociatedTerms: req.AssociatedTerms,
		IsStandard:      true,
	}
	if err := s.fieldRepo.Create(field); err != nil {
		return nil, false, err
	}
	return field, s.syncFieldBestEffort(ctx, field), nil
}

// Get 根据 ID 查询标准字段。
func (s *fieldService) Get(id uint) (*model.StandardField, error) {
	field, err := s.fieldRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 标准字段 ID %d", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return field, nil
}

// GetDetails 返回字段的词根构成明细，顺序与 composition_ids 保持一致。
func (s *fieldService) GetDetails(id uint) ([]model.WordRoot, error) {
	field, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	roots, err := s.rootRepo.FindBatchByIDs(field.CompositionIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.WordRoot, len(roots))
	for i := range roots {
		byID[roots[i].ID] = roots[i]
	}
	ordered := make([]model.WordRoot, 0, len(field.CompositionIDs))
	for _, rootID := range field.CompositionIDs {
		if root, ok := byID[rootID]; ok {
			ordered = append(ordered, root)
		}
	}
	return ordered, nil
}

// List 返回分页的标准字段列表。
func (s *fieldService) List(page, pageSize int, q string) (*model.PaginatedResponse[model.StandardField], error) {
	fields, total, err := s.fieldRepo.List(page, pageSize, q)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = []model.StandardField{}
	}
	return &model.PaginatedResponse[model.StandardField]{Items: fields, Total: total}, nil
}

// Update 更新标准字段并重新同步向量。
func (s *fieldService) Update(ctx context.Context, id uint, req model.CreateFieldRequest) (*model.StandardField, bool, error) {
	field, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}
	if err := s.validateField(&req); err != nil {
		return nil, false, err
	}

	field.FieldCnName = req.FieldCnName
	field.FieldEnName = req.FieldEnName
	field.CompositionIDs = model.IDList(req.CompositionIDs)
	field.DataType = req.DataType
	field.AssociatedTerms = req.AssociatedTerms
	if err := s.fieldRepo.Update(field); err != nil {
		return nil, false, err
	}
	return field, s.syncFieldBestEffort(ctx, field), nil
}

// Delete 删除标准字段及其向量。
func (s *fieldService) Delete(ctx context.Context, id uint) (bool, error) {
	if _, err := s.Get(id); err != nil {
		return false, err
	}
	if err := s.fieldRepo.Delete(id); err != nil {
		return false, err
	}
	if err := s.sync.DeleteFieldVector(ctx, id); err != nil {
		log.Errorf("[SyncService] 标准字段向量删除失败 (ID: %d), 关系库已删除: %v", id, err)
		s.sync.EnqueueRepair(tasks.VectorSyncTask{Kind: tasks.KindField, Action: tasks.ActionDelete, ID: id})
		return false, nil
	}
	return true, nil
}

// ClearAll 清空标准字段表并重建向量集合。
func (s *fieldService) ClearAll(ctx context.Context) error {
	if err := s.fieldRepo.TruncateAll(); err != nil {
		return err
	}
	return s.sync.RebuildFieldCollection(ctx)
}
