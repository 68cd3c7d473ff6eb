package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// IDList 是按序存储词根 ID 的 JSON 列类型。
// MySQL 没有数组类型，composition_ids 以 JSON 数组落库，顺序即字段名的词根构成顺序。
type IDList []uint

// Value 实现 driver.Valuer，将 ID 列表序列化为 JSON。
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	return json.Marshal(l)
}

// Scan 实现 sql.Scanner，从 JSON 列还原 ID 列表。
func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("composition_ids: 不支持的列类型")
}

// StandardField 对应于数据库中的 'standard_fields' 表。
// 一个标准字段由若干词根按序组合而成。
type StandardField struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// FieldCnName 是字段中文名。
	FieldCnName string `gorm:"type:varchar(255);not null" json:"field_cn_name"`
	// FieldEnName 是字段英文名（通常由词根英文缩写拼接）。
	FieldEnName string `gorm:"type:varchar(255);not null" json:"field_en_name"`
	// CompositionIDs 按序引用构成该字段的词根，写入时校验所有 ID 均存在。
	CompositionIDs IDList `gorm:"type:json" json:"composition_ids"`
	// DataType 是可选的数据类型标签，如 VARCHAR(64)。
	DataType string `gorm:"type:varchar(50)" json:"data_type"`
	// AssociatedTerms 是空格分隔的同义词串，用于词面搜索。
	AssociatedTerms string    `gorm:"type:text" json:"associated_terms"`
	IsStandard      bool      `gorm:"default:true" json:"is_standard"`
	CreatedAt       LocalTime `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (StandardField) TableName() string {
	return "standard_fields"
}

// EmbedText 返回该字段用于向量化的规范文本。
func (f *StandardField) EmbedText() string {
	return strings.TrimSpace(f.FieldCnName + " " + f.AssociatedTerms)
}

// CreateFieldRequest 定义了创建/更新标准字段的请求体结构。
type CreateFieldRequest struct {
	FieldCnName     string `json:"field_cn_name" binding:"required"`
	FieldEnName     string `json:"field_en_name" binding:"required"`
	CompositionIDs  []uint `json:"composition_ids"`
	DataType        string `json:"data_type"`
	AssociatedTerms string `json:"associated_terms"`
}
