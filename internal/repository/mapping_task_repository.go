package repository

import (
	"datastd-go/internal/model"

	"gorm.io/gorm"
)

// MappingTaskRepository 接口定义了字段标准化申请任务的数据操作方法。
type MappingTaskRepository interface {
	Create(task *model.MappingTask) error
	FindByID(id uint) (*model.MappingTask, error)
	List(page, pageSize int) ([]model.MappingTask, int64, error)
	CountUnprocessed() (int64, error)
	Update(task *model.MappingTask) error
}

type mappingTaskRepository struct {
	db *gorm.DB
}

// NewMappingTaskRepository 创建一个新的 MappingTaskRepository 实例。
func NewMappingTaskRepository(db *gorm.DB) MappingTaskRepository {
	return &mappingTaskRepository{db: db}
}

// Create 插入一条新的标准化申请任务。
func (r *mappingTaskRepository) Create(task *model.MappingTask) error {
	return r.db.Create(task).Error
}

// FindByID 根据主键查找任务。
func (r *mappingTaskRepository) FindByID(id uint) (*model.MappingTask, error) {
	var task model.MappingTask
	err := r.db.First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List 返回分页的任务列表，未处理的排在前面。
func (r *mappingTaskRepository) List(page, pageSize int) ([]model.MappingTask, int64, error) {
	var items []model.MappingTask
	var total int64

	if err := r.db.Model(&model.MappingTask{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.Order("processed ASC, created_at DESC").Limit(pageSize).Offset(offset).Find(&items).Error
	return items, total, err
}

// CountUnprocessed 统计未处理的任务数。
func (r *mappingTaskRepository) CountUnprocessed() (int64, error) {
	var count int64
	err := r.db.Model(&model.MappingTask{}).Where("processed = ?", false).Count(&count).Error
	return count, err
}

// Update 更新一条任务记录。
func (r *mappingTaskRepository) Update(task *model.MappingTask) error {
	return r.db.Save(task).Error
}
