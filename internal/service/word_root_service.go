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
	"datastd-go/pkg/tokenizer"

	"gorm.io/gorm"
)

// WordRootService 接口定义了标准词根的业务操作。
// 带 vectorSynced 返回值的方法在关系库写入成功后才尝试同步向量，
// 向量侧失败不回滚写入，返回 false 并投递补偿任务。
type WordRootService interface {
	Create(ctx context.Context, req model.CreateWordRoot) (*model.WordRoot, bool, error)
	BatchImport(ctx context.Context, items []model.CreateWordRoot) (*model.ImportResult, error)
	Get(id uint) (*model.WordRoot, error)
	List(page, pageSize int, q string) (*model.PaginatedResponse[model.WordRoot], error)
	Update(ctx context.Context, id uint, req model.CreateWordRoot) (*model.WordRoot, bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	ClearAll(ctx context.Context) error
	// ReloadVocabulary 以当前全量词根重建分词词典，写操作之后必须调用。
	ReloadVocabulary() error
}

type wordRootService struct {
	rootRepo  repository.WordRootRepository
	fieldRepo repository.StandardFieldRepository
	sync      SyncService
	engine    *tokenizer.Engine
}

// NewWordRootService 创建一个新的 WordRootService 实例。
func NewWordRootService(
	rootRepo repository.WordRootRepository,
	fieldRepo repository.StandardFieldRepository,
	sync SyncService,
	engine *tokenizer.Engine,
) WordRootService {
	return &wordRootService{
		rootRepo:  rootRepo,
		fieldRepo: fieldRepo,
		sync:      sync,
		engine:    engine,
	}
}

// validateRoot 校验并规范化词根请求，校验发生在任何写入之前。
func (s *wordRootService) validateRoot(req *model.CreateWordRoot) error {
	req.CnName = strings.TrimSpace(req.CnName)
	if req.CnName == "" {
		return errs.NewValidation("词根中文名不能为空")
	}
	req.EnAbbr = strings.TrimSpace(req.EnAbbr)
	req.EnFullName = strings.TrimSpace(req.EnFullName)
	req.AssociatedTerms = normalizeTerms(req.AssociatedTerms)
	return nil
}

// createOne 写入一条词根并同步向量，被单条创建与批量导入共用。
func (s *wordRootService) createOne(ctx context.Context, req model.CreateWordRoot) (*model.WordRoot, bool, error) {
	if err := s.validateRoot(&req); err != nil {
		return nil, false, err
	}
	if existing, err := s.rootRepo.FindByCnName(req.CnName); err == nil && existing != nil {
		return nil, false, errs.NewValidation(fmt.Sprintf("词根 [%s] 已存在", req.CnName))
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	root := &model.WordRoot{
		CnName:          req.CnName,
		EnAbbr:          req.EnAbbr,
		EnFullName:      req.EnFullName,
		AssociatedTerms: req.AssociatedTerms,
		Remark:          req.Remark,
	}
	if err := s.rootRepo.Create(root); err != nil {
		return nil, false, err
	}

	synced := s.syncRootBestEffort(ctx, root)
	return root, synced, nil
}

// syncRootBestEffort 尝试同步词根向量，失败时降级：记录日志并投递补偿任务。
func (s *wordRootService) syncRootBestEffort(ctx context.Context, root *model.WordRoot) bool {
	if err := s.sync.SyncRoot(ctx, root); err != nil {
		log.Errorf("[SyncService] 词根 [%s] (ID: %d) 向量同步失败, 关系库已写入: %v", root.CnName, root.ID, err)
		s.sync.EnqueueRepair(tasks.VectorSyncTask{Kind: tasks.KindRoot, Action: tasks.ActionUpsert, ID: root.ID})
		return false
	}
	return true
}

// Create 创建单个词根并重建分词词典。
func (s *wordRootService) Create(ctx context.Context, req model.CreateWordRoot) (*model.WordRoot, bool, error) {
	root, synced, err := s.createOne(ctx, req)
	if err != nil {
		return nil, false, err
	}
	if err := s.ReloadVocabulary(); err != nil {
		log.Errorf("[Tokenizer] 创建词根后重建词典失败: %v", err)
	}
	return root, synced, nil
}

// BatchImport 逐条导入词根，单条失败不中断整体。
// 返回的结果满足 SuccessCount+FailureCount == 提交条数，错误按行号排列。
func (s *wordRootService) BatchImport(ctx context.Context, items []model.CreateWordRoot) (*model.ImportResult, error) {
	result := &model.ImportResult{Errors: []string{}}
	for i, item := range items {
		if _, _, err := s.createOne(ctx, item); err != nil {
			result.FailureCount++
			result.Errors = append(result.Errors,
				fmt.Sprintf("行 %d: 词根 [%s] 失败: %s", i+1, item.CnName, err.Error()))
			continue
		}
		result.SuccessCount++
	}
	if err := s.ReloadVocabulary(); err != nil {
		log.Errorf("[Tokenizer] 批量导入后重建词典失败: %v", err)
	}
	return result, nil
}

// Get 根据 ID 查询词根。
func (s *wordRootService) Get(id uint) (*model.WordRoot, error) {
	root, err := s.rootRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 词根 ID %d", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return root, nil
}

// List 返回分页的词根列表。
func (s *wordRootService) List(page, pageSize int, q string) (*model.PaginatedResponse[model.WordRoot], error) {
	roots, total, err := s.rootRepo.List(page, pageSize, q)
	if err != nil {
		return nil, err
	}
	if roots == nil {
		roots = []model.WordRoot{}
	}
	return &model.PaginatedResponse[model.WordRoot]{Items: roots, Total: total}, nil
}

// Update 更新词根并重新同步向量与分词词典。
func (s *wordRootService) Update(ctx context.Context, id uint, req model.CreateWordRoot) (*model.WordRoot, bool, error) {
	root, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}
	if err := s.validateRoot(&req); err != nil {
		return nil, false, err
	}
	if req.CnName != root.CnName {
		if existing, err := s.rootRepo.FindByCnName(req.CnName); err == nil && existing != nil {
			return nil, false, errs.NewValidation(fmt.Sprintf("词根 [%s] 已存在", req.CnName))
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
	}

	root.CnName = req.CnName
	root.EnAbbr = req.EnAbbr
	root.EnFullName = req.EnFullName
	root.AssociatedTerms = req.AssociatedTerms
	root.Remark = req.Remark
	if err := s.rootRepo.Update(root); err != nil {
		return nil, false, err
	}

	synced := s.syncRootBestEffort(ctx, root)
	if err := s.ReloadVocabulary(); err != nil {
		log.Errorf("[Tokenizer] 更新词根后重建词典失败: %v", err)
	}
	return root, synced, nil
}

// Delete 删除词根。仍被标准字段引用的词根拒绝删除并列出引用方。
func (s *wordRootService) Delete(ctx context.Context, id uint) (bool, error) {
	if _, err := s.Get(id); err != nil {
		return false, err
	}

	referencing, err := s.fieldRepo.FindReferencing(id)
	if err != nil {
		return false, err
	}
	if len(referencing) > 0 {
		names := make([]string, 0, len(referencing))
		for _, f := range referencing {
			names = append(names, f.FieldCnName)
		}
		return false, errs.NewValidation(
			fmt.Sprintf("词根仍被 %d 个标准字段引用, 无法删除: %s", len(names), strings.Join(names, ", ")))
	}

	if err := s.rootRepo.Delete(id); err != nil {
		return false, err
	}

	synced := true
	if err := s.sync.DeleteRootVector(ctx, id); err != nil {
		log.Errorf("[SyncService] 词根向量删除失败 (ID: %d), 关系库已删除: %v", id, err)
		s.sync.EnqueueRepair(tasks.VectorSyncTask{Kind: tasks.KindRoot, Action: tasks.ActionDelete, ID: id})
		synced = false
	}
	if err := s.ReloadVocabulary(); err != nil {
		log.Errorf("[Tokenizer] 删除词根后重建词典失败: %v", err)
	}
	return synced, nil
}

// ClearAll 清空词根表并重建向量集合与分词词典。
// 清空是运维级操作，向量侧失败不降级，直接报错。
// 与单条删除同一口径：仍有标准字段引用词根时拒绝清空。
func (s *wordRootService) ClearAll(ctx context.Context) error {
	fields, err := s.fieldRepo.FindAll()
	if err != nil {
		return err
	}
	for i := range fields {
		if len(fields[i].CompositionIDs) > 0 {
			return errs.NewValidation("仍有标准字段引用词根, 请先清空标准字段数据")
		}
	}

	if err := s.rootRepo.TruncateAll(); err != nil {
		return err
	}
	if err := s.sync.RebuildRootCollection(ctx); err != nil {
		return err
	}
	return s.ReloadVocabulary()
}

// ReloadVocabulary 收集全量词根的中文名、英文缩写与同义词，整体重建分词词典。
func (s *wordRootService) ReloadVocabulary() error {
	roots, err := s.rootRepo.FindAll()
	if err != nil {
		return err
	}
	var terms []string
	for i := range roots {
		terms = append(terms, roots[i].CnName)
		if roots[i].EnAbbr != "" {
			terms = append(terms, roots[i].EnAbbr)
		}
		terms = append(terms, roots[i].Terms()...)
	}
	return s.engine.Load(terms)
}
