package vectorstore

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"datastd-go/internal/config"
	"datastd-go/internal/errs"
	"datastd-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// esStore 基于 Elasticsearch dense_vector + knn 检索实现 Store。
// 一个集合对应一个索引，点 ID 即文档 ID。
type esStore struct {
	client *elasticsearch.Client
}

// NewESStore 初始化 Elasticsearch 客户端并返回 Store 实现。
func NewESStore(esCfg config.ElasticsearchConfig) (Store, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esCfg.Addresses},
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: 初始化 Elasticsearch 客户端失败: %v", errs.ErrVectorStore, err)
	}
	log.Infof("Elasticsearch 向量库客户端初始化成功, addresses: %s", esCfg.Addresses)
	return &esStore{client: client}, nil
}

// esDocument 是索引中单个点的文档结构。
type esDocument struct {
	Vector  []float32         `json:"vector"`
	Payload map[string]string `json:"payload"`
}

// EnsureCollection 检查索引是否存在，不存在则按维度创建。
func (s *esStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	res, err := s.client.Indices.Exists([]string{name}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: 检查索引 %s 失败: %v", errs.ErrVectorStore, name, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: 检查索引 %s 时收到意外的状态码: %d", errs.ErrVectorStore, name, res.StatusCode)
	}

	log.Infof("正在创建向量索引: %s (dim=%d)", name, dim)
	mapping := fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "cosine"
				},
				"payload": {
					"type": "object",
					"dynamic": true
				}
			}
		}
	}`, dim)

	createRes, err := s.client.Indices.Create(
		name,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("%w: 创建索引 %s 失败: %v", errs.ErrVectorStore, name, err)
	}
	defer createRes.Body.Close()
	if createRes.IsError() {
		return fmt.Errorf("%w: 创建索引 %s 时 Elasticsearch 返回错误: %s", errs.ErrVectorStore, name, createRes.String())
	}
	return nil
}

// UpsertPoint 以点 ID 作为文档 ID 索引文档，天然幂等。
func (s *esStore) UpsertPoint(ctx context.Context, collection string, id uint, vector []float32, payload map[string]string) error {
	doc := esDocument{Vector: vector, Payload: payload}
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: 序列化文档失败: %v", errs.ErrVectorStore, err)
	}

	req := esapi.IndexRequest{
		Index:      collection,
		DocumentID: strconv.FormatUint(uint64(id), 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: upsert 点 %s/%d 失败: %v", errs.ErrVectorStore, collection, id, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: upsert 点 %s/%d 时 Elasticsearch 返回错误: %s", errs.ErrVectorStore, collection, id, res.String())
	}
	return nil
}

// DeletePoint 删除文档，404 视为成功。
func (s *esStore) DeletePoint(ctx context.Context, collection string, id uint) error {
	req := esapi.DeleteRequest{
		Index:      collection,
		DocumentID: strconv.FormatUint(uint64(id), 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%w: 删除点 %s/%d 失败: %v", errs.ErrVectorStore, collection, id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: 删除点 %s/%d 时 Elasticsearch 返回错误: %s", errs.ErrVectorStore, collection, id, res.String())
	}
	return nil
}

// DropCollection 删除整个索引，404 视为成功。
func (s *esStore) DropCollection(ctx context.Context, name string) error {
	res, err := s.client.Indices.Delete([]string{name}, s.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: 删除索引 %s 失败: %v", errs.ErrVectorStore, name, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("%w: 删除索引 %s 时 Elasticsearch 返回错误: %s", errs.ErrVectorStore, name, res.String())
	}
	return nil
}

// Search 通过 knn 查询返回按相似度降序的至多 topK 个点。
func (s *esStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]ScoredPoint, error) {
	var buf bytes.Buffer
	esQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "vector",
			"query_vector":   vector,
			"k":              topK,
			"num_candidates": topK * 10,
		},
		"size": topK,
	}
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("%w: 序列化 knn 查询失败: %v", errs.ErrVectorStore, err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(collection),
		s.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: 检索集合 %s 失败: %v", errs.ErrVectorStore, collection, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		// 空集合（索引尚未建立）按无结果处理
		if res.StatusCode == http.StatusNotFound {
			return []ScoredPoint{}, nil
		}
		return nil, fmt.Errorf("%w: 检索集合 %s 时 Elasticsearch 返回错误: %s", errs.ErrVectorStore, collection, res.String())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				ID     string     `json:"_id"`
				Score  float32    `json:"_score"`
				Source esDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("%w: 解析检索响应失败: %v", errs.ErrVectorStore, err)
	}

	results := make([]ScoredPoint, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			log.Warnf("忽略无法解析的文档 ID: %s", hit.ID)
			continue
		}
		results = append(results, ScoredPoint{
			ID:      uint(id),
			Score:   hit.Score,
			Payload: hit.Source.Payload,
		})
	}
	return results, nil
}
