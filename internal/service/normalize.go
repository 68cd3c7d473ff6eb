// Package service 包含了应用的业务逻辑层。
package service

import (
	"strings"

	"golang.org/x/text/width"
)

// normalizeTerms 规范化同义词串：中英文逗号替换为空格，按空白切分后用单空格重连。
func normalizeTerms(input string) string {
	s := strings.ReplaceAll(input, ",", " ")
	s = strings.ReplaceAll(s, "，", " ")
	return strings.Join(strings.Fields(s), " ")
}

// normalizeQuery 对查询词做大小写与全半角归一，词面匹配统一走该形态。
func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(width.Narrow.String(q)))
}
