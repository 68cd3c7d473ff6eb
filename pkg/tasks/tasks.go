// Package tasks 定义了异步任务的载荷结构。
package tasks

// 向量同步任务的实体类型与动作。
const (
	KindRoot  = "word_root"
	KindField = "standard_field"

	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// VectorSyncTask 描述一次待补偿的向量同步操作。
// 关系库写入成功而向量库同步失败时投递，消费端按 Kind/Action 重放。
type VectorSyncTask struct {
	Kind   string `json:"kind"`
	Action string `json:"action"`
	ID     uint   `json:"id"`
}
