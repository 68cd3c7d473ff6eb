// Package tokenizer 维护以标准词根为词典的中文分词引擎。
package tokenizer

import (
	"sync/atomic"

	"datastd-go/pkg/log"

	"github.com/go-ego/gse"
)

// 词根词条在词典中的词频，取远高于默认词典的值保证整词优先切分。
const rootTermFreq = 99999

// Engine 持有当前生效的分词器快照。
// Load 以整体替换的方式更新快照，Segment 只读快照，二者之间无锁竞争，
// 进行中的分词调用始终看到一个完整一致的词典。
type Engine struct {
	seg atomic.Pointer[gse.Segmenter]
}

// NewEngine 创建一个仅含默认词典的分词引擎。
func NewEngine() (*Engine, error) {
	e := &Engine{}
	if err := e.Load(nil); err != nil {
		return nil, err
	}
	return e, nil
}

// Load 基于默认词典和给定词汇表构建一个全新的分词器并原子替换当前快照。
// terms 应包含全部词根的中文名、英文缩写及同义词。
func (e *Engine) Load(terms []string) error {
	seg, err := gse.NewEmbed("zh")
	if err != nil {
		return err
	}

	for _, term := range terms {
		if term == "" {
			continue
		}
		if err := seg.AddToken(term, rootTermFreq); err != nil {
			log.Warnf("[Tokenizer] 加载词条 '%s' 失败: %v", term, err)
		}
	}
	// AddToken 只写入词典，必须重算词频分布后 Cut 才会按新词条切分
	seg.CalcToken()

	e.seg.Store(&seg)
	log.Infof("[Tokenizer] 分词词典已重建, 自定义词条数: %d", len(terms))
	return nil
}

// Segment 使用当前词典快照对文本做精确模式切分。
// 纯内存计算，给定同一快照结果确定。
func (e *Engine) Segment(text string) []string {
	seg := e.seg.Load()
	return seg.Cut(text)
}
