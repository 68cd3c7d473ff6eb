package vectorstore

import (
	"context"
	"fmt"

	"datastd-go/internal/config"
	"datastd-go/internal/errs"
	"datastd-go/pkg/log"

	qpb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// qdrantStore 基于 Qdrant gRPC 接口实现 Store。
type qdrantStore struct {
	collections qpb.CollectionsClient
	points      qpb.PointsClient
}

// NewQdrantStore 建立到 Qdrant 的 gRPC 连接并返回 Store 实现。
func NewQdrantStore(cfg config.QdrantConfig) (Store, error) {
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: 连接 qdrant 失败: %v", errs.ErrVectorStore, err)
	}
	log.Infof("Qdrant 客户端初始化成功, addr: %s", cfg.Addr)
	return &qdrantStore{
		collections: qpb.NewCollectionsClient(conn),
		points:      qpb.NewPointsClient(conn),
	}, nil
}

// EnsureCollection 幂等地创建集合，已存在则直接返回。
func (s *qdrantStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	resp, err := s.collections.CollectionExists(ctx, &qpb.CollectionExistsRequest{CollectionName: name})
	if err != nil {
		return fmt.Errorf("%w: 检查集合 %s 失败: %v", errs.ErrVectorStore, name, err)
	}
	if resp.GetResult().GetExists() {
		return nil
	}

	log.Infof("正在创建向量集合: %s (dim=%d)", name, dim)
	_, err = s.collections.Create(ctx, &qpb.CreateCollection{
		CollectionName: name,
		VectorsConfig: &qpb.VectorsConfig{
			Config: &qpb.VectorsConfig_Params{
				Params: &qpb.VectorParams{
					Size:     uint64(dim),
					Distance: qpb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: 创建集合 %s 失败: %v", errs.ErrVectorStore, name, err)
	}
	return nil
}

// UpsertPoint 按 ID 插入或替换一个点。
func (s *qdrantStore) UpsertPoint(ctx context.Context, collection string, id uint, vector []float32, payload map[string]string) error {
	qPayload := make(map[string]*qpb.Value, len(payload))
	for k, v := range payload {
		qPayload[k] = &qpb.Value{Kind: &qpb.Value_StringValue{StringValue: v}}
	}

	_, err := s.points.Upsert(ctx, &qpb.UpsertPoints{
		CollectionName: collection,
		Points: []*qpb.PointStruct{
			{
				Id:      &qpb.PointId{PointIdOptions: &qpb.PointId_Num{Num: uint64(id)}},
				Vectors: &qpb.Vectors{VectorsOptions: &qpb.Vectors_Vector{Vector: &qpb.Vector{Data: vector}}},
				Payload: qPayload,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: upsert 点 %s/%d 失败: %v", errs.ErrVectorStore, collection, id, err)
	}
	return nil
}

// DeletePoint 按 ID 删除一个点，不存在的 ID 由 Qdrant 静默忽略。
func (s *qdrantStore) DeletePoint(ctx context.Context, collection string, id uint) error {
	_, err := s.points.Delete(ctx, &qpb.DeletePoints{
		CollectionName: collection,
		Points: &qpb.PointsSelector{
			PointsSelectorOneOf: &qpb.PointsSelector_Points{
				Points: &qpb.PointsIdsList{
					Ids: []*qpb.PointId{{PointIdOptions: &qpb.PointId_Num{Num: uint64(id)}}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: 删除点 %s/%d 失败: %v", errs.ErrVectorStore, collection, id, err)
	}
	return nil
}

// DropCollection 删除整个集合。
func (s *qdrantStore) DropCollection(ctx context.Context, name string) error {
	_, err := s.collections.Delete(ctx, &qpb.DeleteCollection{CollectionName: name})
	if err != nil {
		return fmt.Errorf("%w: 删除集合 %s 失败: %v", errs.ErrVectorStore, name, err)
	}
	return nil
}

// Search 返回按相似度降序的至多 topK 个点。
func (s *qdrantStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]ScoredPoint, error) {
	resp, err := s.points.Search(ctx, &qpb.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &qpb.WithPayloadSelector{SelectorOptions: &qpb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: 检索集合 %s 失败: %v", errs.ErrVectorStore, collection, err)
	}

	results := make([]ScoredPoint, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		payload := make(map[string]string, len(p.GetPayload()))
		for k, v := range p.GetPayload() {
			payload[k] = v.GetStringValue()
		}
		results = append(results, ScoredPoint{
			ID:      uint(p.GetId().GetNum()),
			Score:   p.GetScore(),
			Payload: payload,
		})
	}
	return results, nil
}
