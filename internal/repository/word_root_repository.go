// Package repository 包含了所有与数据库交互的逻辑。
package repository

import (
	"datastd-go/internal/model"

	"gorm.io/gorm"
)

// WordRootRepository 接口定义了标准词根的数据操作方法。
type WordRootRepository interface {
	Create(root *model.WordRoot) error
	FindByID(id uint) (*model.WordRoot, error)
	FindAll() ([]model.WordRoot, error)
	FindBatchByIDs(ids []uint) ([]model.WordRoot, error)
	FindByCnName(cnName string) (*model.WordRoot, error)
	// FindByTerm 按词面精确查找：中文名等于 term，或同义词串中含有 term 这一完整词条。
	FindByTerm(term string) ([]model.WordRoot, error)
	List(page, pageSize int, q string) ([]model.WordRoot, int64, error)
	Update(root *model.WordRoot) error
	Delete(id uint) error
	TruncateAll() error
}

type wordRootRepository struct {
	db *gorm.DB
}

// NewWordRootRepository 创建一个新的 WordRootRepository 实例。
func NewWordRootRepository(db *gorm.DB) WordRootRepository {
	return &wordRootRepository{db: db}
}

// Create 在数据库中插入一个新的词根记录。
func (r *wordRootRepository) Create(root *model.WordRoot) error {
	return r.db.Create(root).Error
}

// FindByID 根据主键查找词根。
func (r *wordRootRepository) FindByID(id uint) (*model.WordRoot, error) {
	var root model.WordRoot
	err := r.db.First(&root, id).Error
	if err != nil {
		return nil, err
	}
	return &root, nil
}

// FindAll 检索所有词根记录。
func (r *wordRootRepository) FindAll() ([]model.WordRoot, error) {
	var roots []model.WordRoot
	err := r.db.Find(&roots).Error
	return roots, err
}

// FindBatchByIDs 根据主键集合批量查找词根。
func (r *wordRootRepository) FindBatchByIDs(ids []uint) ([]model.WordRoot, error) {
	var roots []model.WordRoot
	if len(ids) == 0 {
		return roots, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&roots).Error
	return roots, err
}

// FindByCnName 根据中文名精确查找词根。
func (r *wordRootRepository) FindByCnName(cnName string) (*model.WordRoot, error) {
	var root model.WordRoot
	err := r.db.Where("cn_name = ?", cnName).First(&root).Error
	if err != nil {
		return nil, err
	}
	return &root, nil
}

// FindByTerm 按词面精确匹配词根。
// 同义词串为空格分隔，首尾补空格后做 '% term %' 匹配即可命中完整词条，
// 避免 "金" 误中 "金额" 这类子串。
func (r *wordRootRepository) FindByTerm(term string) ([]model.WordRoot, error) {
	var roots []model.WordRoot
	err := r.db.
		Where("cn_name = ? OR CONCAT(' ', associated_terms, ' ') LIKE ?", term, "% "+term+" %").
		Find(&roots).Error
	return roots, err
}

// List 返回分页的词根列表，q 非空时按中文名/英文缩写做模糊过滤。
func (r *wordRootRepository) List(page, pageSize int, q string) ([]model.WordRoot, int64, error) {
	var roots []model.WordRoot
	var total int64

	query := r.db.Model(&model.WordRoot{})
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("cn_name LIKE ? OR en_abbr LIKE ?", pattern, pattern)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Limit(pageSize).Offset(offset).Find(&roots).Error
	return roots, total, err
}

// Update 更新一个已存在的词根记录。
func (r *wordRootRepository) Update(root *model.WordRoot) error {
	return r.db.Save(root).Error
}

// Delete 根据主键删除词根记录。
func (r *wordRootRepository) Delete(id uint) error {
	return r.db.Delete(&model.WordRoot{}, id).Error
}

// TruncateAll 清空词根表并重置自增 ID。
func (r *wordRootRepository) TruncateAll() error {
	return r.db.Exec("TRUNCATE TABLE standard_word_roots").Error
}
