package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"datastd-go/internal/config"
	"datastd-go/internal/model"
	"datastd-go/internal/repository"
	"datastd-go/pkg/log"
	"datastd-go/pkg/storage"
)

// 导出快照的下载链接有效期。
const exportURLExpiry = 24 * time.Hour

// vocabularySnapshot 是导出文件的 JSON 结构。
type vocabularySnapshot struct {
	ExportedAt     time.Time             `json:"exported_at"`
	WordRoots      []model.WordRoot      `json:"word_roots"`
	StandardFields []model.StandardField `json:"standard_fields"`
}

// ExportService 接口定义了词汇快照导出操作。
type ExportService interface {
	// ExportSnapshot 将全量词根与标准字段导出为 JSON 对象写入对象存储，
	// 返回对象名与限时下载链接。
	ExportSnapshot(ctx context.Context) (objectName, url string, err error)
}

type exportService struct {
	rootRepo  repository.WordRootRepository
	fieldRepo repository.StandardFieldRepository
	cfg       config.MinIOConfig
}

// NewExportService 创建一个新的 ExportService 实例。
func NewExportService(
	rootRepo repository.WordRootRepository,
	fieldRepo repository.StandardFieldRepository,
	cfg config.MinIOConfig,
) ExportService {
	return &exportService{rootRepo: rootRepo, fieldRepo: fieldRepo, cfg: cfg}
}

// ExportSnapshot 导出当前词汇表快照。
func (s *exportService) ExportSnapshot(ctx context.Context) (string, string, error) {
	roots, err := s.rootRepo.FindAll()
	if err != nil {
		return "", "", err
	}
	fields, err := s.fieldRepo.FindAll()
	if err != nil {
		return "", "", err
	}

	snapshot := vocabularySnapshot{
		ExportedAt:     time.Now(),
		WordRoots:      roots,
		StandardFields: fields,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", "", err
	}

	objectName := fmt.Sprintf("export/vocabulary-%s.json", time.Now().Format("20060102-150405"))
	if err := storage.PutObject(ctx, s.cfg.BucketName, objectName, "application/json", data); err != nil {
		return "", "", fmt.Errorf("上传词汇快照失败: %w", err)
	}

	url, err := storage.GetPresignedURL(s.cfg.BucketName, objectName, exportURLExpiry)
	if err != nil {
		return "", "", err
	}
	log.Infof("[Export] 词汇快照已导出: %s (词根 %d 条, 字段 %d 条)", objectName, len(roots), len(fields))
	return objectName, url, nil
}
