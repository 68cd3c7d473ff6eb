package repository

import (
	"strconv"

	"datastd-go/internal/model"

	"gorm.io/gorm"
)

// StandardFieldRepository 接口定义了标准字段的数据操作方法。
type StandardFieldRepository interface {
	Create(field *model.StandardField) error
	FindByID(id uint) (*model.StandardField, error)
	FindAll() ([]model.StandardField, error)
	// FindReferencing 返回 composition_ids 中引用了指定词根的所有字段。
	FindReferencing(rootID uint) ([]model.StandardField, error)
	// SearchLexical 对中文名/英文名/同义词做模糊匹配，按 ID 升序返回至多 limit 条。
	SearchLexical(q string, limit int) ([]model.StandardField, error)
	List(page, pageSize int, q string) ([]model.StandardField, int64, error)
	Update(field *model.StandardField) error
	Delete(id uint) error
	TruncateAll() error
}

type standardFieldRepository struct {
	db *gorm.DB
}

// NewStandardFieldRepository 创建一个新的 StandardFieldRepository 实例。
func NewStandardFieldRepository(db *gorm.DB) StandardFieldRepository {
	return &standardFieldRepository{db: db}
}

// Create 在数据库中插入一个新的标准字段记录。
func (r *standardFieldRepository) Create(field *model.StandardField) error {
	return r.db.Create(field).Error
}

// FindByID 根据主键查找标准字段。
func (r *standardFieldRepository) FindByID(id uint) (*model.StandardField, error) {
	var field model.StandardField
	err := r.db.First(&field, id).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// FindAll 检索所有标准字段记录。
func (r *standardFieldRepository) FindAll() ([]model.StandardField, error) {
	var fields []model.StandardField
	err := r.db.Find(&fields).Error
	return fields, err
}

// FindReferencing 借助 JSON_CONTAINS 在 composition_ids 列中查找引用。
func (r *standardFieldRepository) FindReferencing(rootID uint) ([]model.StandardField, error) {
	var fields []model.StandardField
	err := r.db.
		Where("JSON_CONTAINS(composition_ids, ?)", strconv.FormatUint(uint64(rootID), 10)).
		Find(&fields).Error
	return fields, err
}

// SearchLexical 执行词面模糊搜索，词面命中不携带相似度分数，按 ID 稳定排序。
func (r *standardFieldRepository) SearchLexical(q string, limit int) ([]model.StandardField, error) {
	var fields []model.StandardField
	pattern := "%" + q + "%"
	err := r.db.
		Where("field_cn_name LIKE ? OR field_en_name LIKE ? OR associated_terms LIKE ?", pattern, pattern, pattern).
		Order("id ASC").
		Limit(limit).
		Find(&fields).Error
	return fields, err
}

// List 返回分页的标准字段列表，q 非空时按中文名/同义词做模糊过滤。
func (r *standardFieldRepository) List(page, pageSize int, q string) ([]model.StandardField, int64, error) {
	var fields []model.StandardField
	var total int64

	query := r.db.Model(&model.StandardField{})
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("field_cn_name LIKE ? OR associated_terms LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&fields).Error
	return fields, total, err
}

// Update 更新一个已存在的标准字段记录。
func (r *standardFieldRepository) Update(field *model.StandardField) error {
	return r.db.Save(field).Error
}

// Delete 根据主键删除标准字段记录。
func (r *standardFieldRepository) Delete(id uint) error {
	return r.db.Delete(&model.StandardField{}, id).Error
}

// TruncateAll 清空标准字段表并重置自增 ID。
func (r *standardFieldRepository) TruncateAll() error {
	return r.db.Exec("TRUNCATE TABLE standard_fields").Error
}
