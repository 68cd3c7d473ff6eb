package model

// PaginatedResponse 是分页列表的统一响应结构。
type PaginatedResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// ImportResult 是批量导入的聚合结果。
// 恒有 SuccessCount+FailureCount == 提交条数，Errors 按失败顺序排列。
type ImportResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors"`
}

// Segment 是分词建议中的一个切分片段。
// Word 为切出的词，Candidates 为词面命中的全部候选词根，未命中则为空。
type Segment struct {
	Word       string     `json:"word"`
	Candidates []WordRoot `json:"candidates"`
}

// FieldSearchResult 是字段搜索的单条结果。
// 词面命中时 Score 为 null，向量兜底命中时为相似度分数。
type FieldSearchResult struct {
	ID          uint     `json:"id"`
	FieldCnName string   `json:"field_cn_name"`
	FieldEnName string   `json:"field_en_name"`
	Score       *float32 `json:"score"`
}

// RootSuggestion 是语义相近词根检索的单条结果。
type RootSuggestion struct {
	ID     uint    `json:"id"`
	CnName string  `json:"cn_name"`
	EnAbbr string  `json:"en_abbr"`
	Score  float32 `json:"score"`
}
