// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"datastd-go/internal/config"
	"datastd-go/pkg/database"
	"datastd-go/pkg/log"
	"datastd-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// SyncProcessor defines the interface for any service that can replay a vector sync task.
// This decouples the Kafka consumer from the concrete coordinator implementation.
type SyncProcessor interface {
	Replay(ctx context.Context, task tasks.VectorSyncTask) error
}

var producer *kafka.Writer

// InitProducer 初始化 Kafka 生产者。
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka 生产者初始化成功")
}

// ProduceSyncTask 发送一个向量同步补偿任务到 Kafka。
func ProduceSyncTask(task tasks.VectorSyncTask) error {
	if producer == nil {
		return fmt.Errorf("kafka 生产者未初始化")
	}
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Value: taskBytes,
		},
	)
}

// StartConsumer 启动一个 Kafka 消费者来重放向量同步补偿任务。
func StartConsumer(cfg config.KafkaConfig, processor SyncProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "datastd-go-sync-consumer",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka 消费者已启动，正在监听主题 '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			// 消费者是补偿通道的唯一出口，broker 抖动时退避重连而不是退出
			log.Error("从 Kafka 读取消息失败", err)
			time.Sleep(5 * time.Second)
			continue
		}

		var task tasks.VectorSyncTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("无法解析 Kafka 消息: %v, value: %s", err, string(m.Value))
			// 消息格式错误，直接提交，避免阻塞队列
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交错误消息失败: %v", err)
			}
			continue
		}

		log.Infof("开始重放向量同步任务: kind=%s, action=%s, id=%d", task.Kind, task.Action, task.ID)
		if err := processor.Replay(context.Background(), task); err != nil {
			log.Errorf("重放向量同步任务失败: kind=%s, id=%d, Error: %v", task.Kind, task.ID, err)
			// 使用 Redis 计数失败次数，达到阈值后提交 offset 终止重试
			attemptsKey := fmt.Sprintf("kafka:sync-attempts:%s:%d", task.Kind, task.ID)
			attempts, incErr := database.RDB.Incr(context.Background(), attemptsKey).Result()
			if incErr == nil {
				_ = database.RDB.Expire(context.Background(), attemptsKey, 24*time.Hour).Err()
			}
			if incErr != nil {
				// Redis 异常时保守处理：不提交 offset，让 Kafka 重试
				continue
			}
			if attempts >= 3 {
				log.Errorf("向量同步任务多次失败(>=3)，提交 offset 终止重试: kind=%s, id=%d", task.Kind, task.ID)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
				}
			}
			// attempts < 3 时，不提交 offset 让 Kafka 自动重试
		} else {
			log.Infof("向量同步任务重放成功: kind=%s, id=%d", task.Kind, task.ID)
			_ = database.RDB.Del(context.Background(), fmt.Sprintf("kafka:sync-attempts:%s:%d", task.Kind, task.ID)).Err()
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("提交 Kafka 消息 offset 失败: %v", err)
			}
		}
	}
}
