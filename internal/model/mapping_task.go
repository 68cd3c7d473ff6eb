package model

// MappingTask 对应于数据库中的 'mapping_tasks' 表。
// 业务方提交的待标准化字段名由管理员认领处理。
type MappingTask struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// FieldName 是待标准化的原始字段名。
	FieldName string `gorm:"type:varchar(255);not null" json:"field_name"`
	// Submitter 是提交人标识，可为空。
	Submitter string `gorm:"type:varchar(100)" json:"submitter"`
	// Processed 标记任务是否已处理。
	Processed bool      `gorm:"default:false;index" json:"processed"`
	CreatedAt LocalTime `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (MappingTask) TableName() string {
	return "mapping_tasks"
}
