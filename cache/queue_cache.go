package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"KaraFM/db"

	"github.com/go-redis/redis/v8"
)

// QueueItem 表示播放队列中的一首歌
type QueueItem struct {
	SongID   int64   `json:"songId"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Cover    string  `json:"cover,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Position int     `json:"position"`
	AddedAt  int64   `json:"addedAt,omitempty"`
}

// queueTTL 播放队列的过期时间
const queueTTL = 24 * time.Hour

// queueKey 根据用户ID生成播放队列的Redis键
func queueKey(userID int64) string {
	return fmt.Sprintf("queue:%d", userID)
}

// GetQueue 返回用户的播放队列，按位置排序
func GetQueue(ctx context.Context, userID int64) ([]QueueItem, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	members, err := db.RedisClient.ZRange(ctx, queueKey(userID), 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []QueueItem{}, nil
		}
		return nil, fmt.Errorf("failed to read play queue: %w", err)
	}

	items := make([]QueueItem, 0, len(members))
	for _, member := range members {
		var item QueueItem
		if err := json.Unmarshal([]byte(member), &item); err != nil {
			continue // skip corrupted entries rather than failing the whole queue
		}
		items = append(items, item)
	}
	return items, nil
}

// AddToQueue 将歌曲追加到播放队列末尾
func AddToQueue(ctx context.Context, userID int64, item QueueItem) error {
	if db.RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}

	items, err := GetQueue(ctx, userID)
	if err != nil {
		return err
	}

	maxPos := -1
	for _, existing := range items {
		if existing.Position > maxPos {
			maxPos = existing.Position
		}
	}
	item.Position = maxPos + 1
	item.AddedAt = time.Now().Unix()

	itemJSON, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal queue item: %w", err)
	}

	key := queueKey(userID)
	if err := db.RedisClient.ZAdd(ctx, key, &redis.Z{
		Score:  float64(item.Position),
		Member: itemJSON,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add song to play queue: %w", err)
	}

	if err := db.RedisClient.Expire(ctx, key, queueTTL).Err(); err != nil {
		return fmt.Errorf("failed to set play queue expiration: %w", err)
	}
	return nil
}

// RemoveFromQueue 从播放队列中删除指定歌曲
func RemoveFromQueue(ctx context.Context, userID, songID int64) error {
	if db.RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}

	items, err := GetQueue(ctx, userID)
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.SongID != songID {
			continue
		}
		itemJSON, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal queue item: %w", err)
		}
		if err := db.RedisClient.ZRem(ctx, queueKey(userID), itemJSON).Err(); err != nil {
			return fmt.Errorf("failed to remove song from play queue: %w", err)
		}
		return nil
	}
	return fmt.Errorf("song not found in play queue")
}

// ClearQueue 清空用户的播放队列
func ClearQueue(ctx context.Context, userID int64) error {
	if db.RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := db.RedisClient.Del(ctx, queueKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear play queue: %w", err)
	}
	return nil
}
