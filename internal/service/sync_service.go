package service

import (
	"context"
	"errors"
	"fmt"

	"datastd-go/internal/config"
	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/internal/repository"
	"datastd-go/pkg/kafka"
	"datastd-go/pkg/log"
	"datastd-go/pkg/tasks"
	"datastd-go/pkg/vectorstore"

	"gorm.io/gorm"
)

// Embedder 抽象了向量化能力，便于业务层注入与测试替换。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// SyncService 负责维持关系库与向量库的一致性。
// 关系库是唯一事实源，向量库是尽力而为的派生投影：
// 两库之间没有跨库事务，向量侧失败不回滚关系侧写入。
type SyncService interface {
	// ResyncAll 执行启动期全量重建：确保集合存在并逐条 upsert 全部实体。
	// 该阶段失败必须视为致命错误，服务不得在未完成重建前对外提供检索。
	ResyncAll(ctx context.Context) error
	SyncRoot(ctx context.Context, root *model.WordRoot) error
	DeleteRootVector(ctx context.Context, id uint) error
	SyncField(ctx context.Context, field *model.StandardField) error
	DeleteFieldVector(ctx context.Context, id uint) error
	// RebuildRootCollection / RebuildFieldCollection 在一键清空后删除并重建集合。
	RebuildRootCollection(ctx context.Context) error
	RebuildFieldCollection(ctx context.Context) error
	// EnqueueRepair 将一次失败的向量同步投递到补偿队列；队列未启用时仅记录日志。
	EnqueueRepair(task tasks.VectorSyncTask)
	// Replay 供消费端重放补偿任务；实体已不存在时删除对应点使两侧收敛。
	Replay(ctx context.Context, task tasks.VectorSyncTask) error
}

type syncService struct {
	embedder     Embedder
	store        vectorstore.Store
	rootRepo     repository.WordRootRepository
	fieldRepo    repository.StandardFieldRepository
	vecCfg       config.VectorConfig
	repairEnable bool
}

// NewSyncService 创建一个新的 SyncService 实例。
func NewSyncService(
	embedder Embedder,
	store vectorstore.Store,
	rootRepo repository.WordRootRepository,
	fieldRepo repository.StandardFieldRepository,
	vecCfg config.VectorConfig,
	kafkaCfg config.KafkaConfig,
) SyncService {
	return &syncService{
		embedder:     embedder,
		store:        store,
		rootRepo:     rootRepo,
		fieldRepo:    fieldRepo,
		vecCfg:       vecCfg,
		repairEnable: kafkaCfg.Enabled,
	}
}

// ResyncAll 在服务启动时把全部词根与标准字段重新写入向量库。
func (s *syncService) ResyncAll(ctx context.Context) error {
	dim := s.embedder.Dimensions()
	if err := s.store.EnsureCollection(ctx, s.vecCfg.RootCollection, dim); err != nil {
		return err
	}
	if err := s.store.EnsureCollection(ctx, s.vecCfg.FieldCollection, dim); err != nil {
		return err
	}

	roots, err := s.rootRepo.FindAll()
	if err != nil {
		return fmt.Errorf("读取词根列表失败: %w", err)
	}
	log.Infof("[SyncService] 正在同步 [标准词根] 向量, 共 %d 条", len(roots))
	for i := range roots {
		if err := s.SyncRoot(ctx, &roots[i]); err != nil {
			return err
		}
	}

	fields, err := s.fieldRepo.FindAll()
	if err != nil {
		return fmt.Errorf("读取标准字段列表失败: %w", err)
	}
	log.Infof("[SyncService] 正在同步 [标准字段] 向量, 共 %d 条", len(fields))
	for i := range fields {
		if err := s.SyncField(ctx, &fields[i]); err != nil {
			return err
		}
	}

	log.Infof("[SyncService] 全量向量同步完成: 词根 %d 条, 字段 %d 条", len(roots), len(fields))
	return nil
}

// SyncRoot 计算词根的规范文本向量并 upsert 到词根集合。
func (s *syncService) SyncRoot(ctx context.Context, root *model.WordRoot) error {
	vec, err := s.embedder.Embed(ctx, root.EmbedText())
	if err != nil {
		return err
	}
	payload := map[string]string{
		"cn_name": root.CnName,
		"en_abbr": root.EnAbbr,
	}
	return s.store.UpsertPoint(ctx, s.vecCfg.RootCollection, root.ID, vec, payload)
}

// DeleteRootVector 删除词根对应的向量点。
func (s *syncService) DeleteRootVector(ctx context.Context, id uint) error {
	return s.store.DeletePoint(ctx, s.vecCfg.RootCollection, id)
}

// SyncField 计算标准字段的规范文本向量并 upsert 到字段集合。
func (s *syncService) SyncField(ctx context.Context, field *model.StandardField) error {
	vec, err := s.embedder.Embed(ctx, field.EmbedText())
	if err != nil {
		return err
	}
	payload := map[string]string{
		"cn_name": field.FieldCnName,
		"en_name": field.FieldEnName,
	}
	return s.store.UpsertPoint(ctx, s.vecCfg.FieldCollection, field.ID, vec, payload)
}

// DeleteFieldVector 删除标准字段对应的向量点。
func (s *syncService) DeleteFieldVector(ctx context.Context, id uint) error {
	return s.store.DeletePoint(ctx, s.vecCfg.FieldCollection, id)
}

// RebuildRootCollection 删除并重建词根集合。
func (s *syncService) RebuildRootCollection(ctx context.Context) error {
	if err := s.store.DropCollection(ctx, s.vecCfg.RootCollection); err != nil {
		return err
	}
	return s.store.EnsureCollection(ctx, s.vecCfg.RootCollection, s.embedder.Dimensions())
}

// RebuildFieldCollection 删除并重建字段集合。
func (s *syncService) RebuildFieldCollection(ctx context.Context) error {
	if err := s.store.DropCollection(ctx, s.vecCfg.FieldCollection); err != nil {
		return err
	}
	return s.store.EnsureCollection(ctx, s.vecCfg.FieldCollection, s.embedder.Dimensions())
}

// EnqueueRepair 投递补偿任务。投递本身失败只记录日志，不再级联。
func (s *syncService) EnqueueRepair(task tasks.VectorSyncTask) {
	if !s.repairEnable {
		log.Warnf("[SyncService] 补偿队列未启用, 向量投影保持过期状态: kind=%s, action=%s, id=%d",
			task.Kind, task.Action, task.ID)
		return
	}
	if err := kafka.ProduceSyncTask(task); err != nil {
		log.Errorf("[SyncService] 投递向量同步补偿任务失败: kind=%s, id=%d, error: %v", task.Kind, task.ID, err)
	}
}

// Replay 重放一次补偿任务。以关系库当前状态为准：
// upsert 任务对应的实体若已被删除，则改为删除向量点，保证两侧收敛。
func (s *syncService) Replay(ctx context.Context, task tasks.VectorSyncTask) error {
	switch task.Kind {
	case tasks.KindRoot:
		if task.Action == tasks.ActionDelete {
			return s.DeleteRootVector(ctx, task.ID)
		}
		root, err := s.rootRepo.FindByID(task.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.DeleteRootVector(ctx, task.ID)
		}
		if err != nil {
			return err
		}
		return s.SyncRoot(ctx, root)
	case tasks.KindField:
		if task.Action == tasks.ActionDelete {
			return s.DeleteFieldVector(ctx, task.ID)
		}
		field, err := s.fieldRepo.FindByID(task.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.DeleteFieldVector(ctx, task.ID)
		}
		if err != nil {
			return err
		}
		return s.SyncField(ctx, field)
	}
	return fmt.Errorf("%w: 未知的同步任务类型: %s", errs.ErrVectorStore, task.Kind)
}
