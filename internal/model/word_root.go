// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "strings"

// WordRoot 对应于数据库中的 'standard_word_roots' 表。
// 词根是构成标准字段名的最小词汇单元，中文名在库内应当唯一。
type WordRoot struct {
	// ID 是词根的自增主键，同时作为向量库中 point 的 ID。
	ID uint `gorm:"primaryKey" json:"id"`
	// CnName 是词根的中文规范名，必填。
	CnName string `gorm:"type:varchar(100);not null;uniqueIndex" json:"cn_name"`
	// EnAbbr 是英文缩写，用于拼接标准字段英文名。
	EnAbbr string `gorm:"type:varchar(100)" json:"en_abbr"`
	// EnFullName 是英文全称，可选。
	EnFullName string `gorm:"type:varchar(255)" json:"en_full_name"`
	// AssociatedTerms 是空格分隔的同义词串，既用于词面匹配也用于分词词典。
	AssociatedTerms string `gorm:"type:text" json:"associated_terms"`
	// Remark 是备注，无业务语义。
	Remark    string    `gorm:"type:text" json:"remark"`
	CreatedAt LocalTime `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (WordRoot) TableName() string {
	return "standard_word_roots"
}

// Terms 将同义词串拆分为单个词条，空串返回空切片。
func (r *WordRoot) Terms() []string {
	return strings.Fields(r.AssociatedTerms)
}

// EmbedText 返回该词根用于向量化的规范文本。
// 索引时与查询时必须使用同一拼接策略，否则相似度不可比。
func (r *WordRoot) EmbedText() string {
	return strings.TrimSpace(r.CnName + " " + r.EnFullName + " " + r.AssociatedTerms)
}

// CreateWordRoot 定义了创建/更新词根的请求体结构。
type CreateWordRoot struct {
	CnName          string `json:"cn_name" binding:"required"`
	EnAbbr          string `json:"en_abbr"`
	EnFullName      string `json:"en_full_name"`
	AssociatedTerms string `json:"associated_terms"`
	Remark          string `json:"remark"`
}
