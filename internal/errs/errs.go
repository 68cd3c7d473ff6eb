// Package errs 定义了核心业务的错误分类。
package errs

import "errors"

// ErrNotFound 表示按 ID 操作的实体不存在。
var ErrNotFound = errors.New("记录不存在")

// ErrEmbedding 表示向量模型推理失败。
var ErrEmbedding = errors.New("向量计算失败")

// ErrVectorStore 表示向量库的集合或传输层错误。
// 调用方不能假设向量库在部分失败时已回滚。
var ErrVectorStore = errors.New("向量库操作失败")

// ValidationError 表示请求载荷未通过校验，校验在任何写入副作用之前完成。
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation 构造一个 ValidationError。
func NewValidation(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidation 判断 err 是否为校验错误。
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
