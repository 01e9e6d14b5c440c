package service

import (
	"context"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/port"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Quota interface {
	// CheckLimit reports whether count more lookups fit into today's limit of the chat and
	// notifies the chat when they don't.
	CheckLimit(ctx context.Context, message *domain.Message, count int) bool
	AddUsage(chatID int64, count int)
}

// LookupQuota counts looked up identifiers per chat and day. A limit of zero disables it.
type LookupQuota struct {
	chats      map[int64]int
	dailyLimit int
	mutex      *sync.Mutex
	sender     port.TextSender
}

func NewLookupQuota(ctx context.Context, sender port.TextSender) *LookupQuota {
	q := &LookupQuota{
		chats:      make(map[int64]int),
		mutex:      &sync.Mutex{},
		sender:     sender,
		dailyLimit: viper.GetInt("lookup.daily_limit"),
	}

	if q.dailyLimit > 0 {
		go q.ResetDailyLimit(ctx)
	}

	return q
}

func (q *LookupQuota) AddUsage(chatID int64, count int) {
	q.mutex.Lock()
	q.chats[chatID] += count
	q.mutex.Unlock()
}

func (q *LookupQuota) Used(chatID int64) int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.chats[chatID]
}

const overLimit = "You have reached today's limit of %d lookups (%d used). The limit resets in %s."

func (q *LookupQuota) CheckLimit(ctx context.Context, message *domain.Message, count int) bool {
	if q.dailyLimit <= 0 {
		return true
	}

	used := q.Used(message.ChatID)
	if used+count <= q.dailyLimit {
		return true
	}

	_, err := q.sender.SendMessage(ctx, message,
		fmt.Sprintf(overLimit, q.dailyLimit, used, time.Until(getNextResetTime()).Truncate(time.Second)))
	if err != nil {
		log.Warn().Err(err).Msg("failed to send daily limit exceeded warning")
	}

	return false
}

func (q *LookupQuota) ResetDailyLimit(ctx context.Context) {
	reset := getNextResetTime()

	for {
		log.Debug().Time("reset", reset).Msg("running reset timer")
		select {
		case <-time.After(time.Until(reset)):
			log.Debug().Msg("resetting daily lookup limit")
			q.mutex.Lock()
			q.chats = make(map[int64]int)
			q.mutex.Unlock()
			time.Sleep(time.Second)
			reset = getNextResetTime()
		case <-ctx.Done():
			log.Debug().Msg("stopping daily limit reset")
			return
		}
	}
}

func getNextResetTime() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
}
