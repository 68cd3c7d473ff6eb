package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"datastd-go/internal/errs"
	"datastd-go/internal/model"
	"datastd-go/internal/repository"
	"datastd-go/pkg/tokenizer"

	"gorm.io/gorm"
)

// MappingService 接口定义了字段名到词根的映射建议与标准化申请任务。
type MappingService interface {
	// SuggestRoots 为原始字段名给出词根映射建议：
	// 整短语词面命中则作为单一片段返回；否则按词根词典分词，
	// 逐片段附上词面命中的候选词根，片段顺序与原文一致。
	SuggestRoots(ctx context.Context, input string) ([]model.Segment, error)
	SubmitTask(fieldName, submitter string) (*model.MappingTask, error)
	ListTasks(page, pageSize int) (*model.PaginatedResponse[model.MappingTask], error)
	CountUnprocessedTasks() (int64, error)
	MarkTaskProcessed(id uint) (*model.MappingTask, error)
}

type mappingService struct {
	rootRepo repository.WordRootRepository
	taskRepo repository.MappingTaskRepository
	engine   *tokenizer.Engine
}

// NewMappingService 创建一个新的 MappingService 实例。
func NewMappingService(
	rootRepo repository.WordRootRepository,
	taskRepo repository.MappingTaskRepository,
	engine *tokenizer.Engine,
) MappingService {
	return &mappingService{rootRepo: rootRepo, taskRepo: taskRepo, engine: engine}
}

// SuggestRoots 的整短语优先策略保证 "客户名称" 整体即是词根时不被切碎。
// 输入与词面检索统一走大小写/全半角归一，保持与字段搜索相同的匹配口径。
func (s *mappingService) SuggestRoots(_ context.Context, input string) ([]model.Segment, error) {
	phrase := normalizeQuery(input)
	if phrase == "" {
		return nil, errs.NewValidation("字段名不能为空")
	}

	whole, err := s.rootRepo.FindByTerm(phrase)
	if err != nil {
		return nil, err
	}
	if len(whole) > 0 {
		return []model.Segment{{Word: phrase, Candidates: whole}}, nil
	}

	segments := []model.Segment{}
	for _, word := range s.engine.Segment(phrase) {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		candidates, err := s.rootRepo.FindByTerm(word)
		if err != nil {
			return nil, err
		}
		if candidates == nil {
			candidates = []model.WordRoot{}
		}
		segments = append(segments, model.Segment{Word: word, Candidates: candidates})
	}
	return segments, nil
}

// SubmitTask 提交一条字段标准化申请，供管理员后续认领。
func (s *mappingService) SubmitTask(fieldName, submitter string) (*model.MappingTask, error) {
	fieldName = strings.TrimSpace(fieldName)
	if fieldName == "" {
		return nil, errs.NewValidation("待标准化字段名不能为空")
	}
	task := &model.MappingTask{
		FieldName: fieldName,
		Submitter: strings.TrimSpace(submitter),
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks 返回分页的申请任务列表，未处理的排在前面。
func (s *mappingService) ListTasks(page, pageSize int) (*model.PaginatedResponse[model.MappingTask], error) {
	items, total, err := s.taskRepo.List(page, pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.MappingTask{}
	}
	return &model.PaginatedResponse[model.MappingTask]{Items: items, Total: total}, nil
}

// CountUnprocessedTasks 统计待处理的申请数。
func (s *mappingService) CountUnprocessedTasks() (int64, error) {
	return s.taskRepo.CountUnprocessed()
}

// MarkTaskProcessed 将申请标记为已处理。
func (s *mappingService) MarkTaskProcessed(id uint) (*model.MappingTask, error) {
	task, err := s.taskRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: 申请任务 ID %d", errs.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	task.Processed = true
	if err := s.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}
