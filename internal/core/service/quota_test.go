package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"innbot/internal/core/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestAddUsage(t *testing.T) {
	quota := &LookupQuota{
		chats: make(map[int64]int),
		mutex: &sync.Mutex{},
	}
	tests := []struct {
		name      string
		chatID    int64
		initial   int
		add       int
		wantTotal int
	}{
		{
			name:      "Add first usage",
			chatID:    1,
			initial:   0,
			add:       2,
			wantTotal: 2,
		},
		{
			name:      "Add to existing usage",
			chatID:    2,
			initial:   1,
			add:       3,
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quota.chats[tt.chatID] = tt.initial
			quota.AddUsage(tt.chatID, tt.add)
			assert.Equal(t, tt.wantTotal, quota.Used(tt.chatID))
		})
	}
}

func TestCheckLimit(t *testing.T) {
	dailyLimit := 5
	tests := []struct {
		name          string
		limit         int
		chatID        int64
		used          int
		count         int
		expectAllowed bool
		expectMessage bool
		simulateErr   error
	}{
		{
			name:          "Below limit",
			limit:         dailyLimit,
			chatID:        1,
			used:          3,
			count:         1,
			expectAllowed: true,
		},
		{
			name:          "Exactly at limit",
			limit:         dailyLimit,
			chatID:        2,
			used:          3,
			count:         2,
			expectAllowed: true,
		},
		{
			name:          "Above limit and message sent",
			limit:         dailyLimit,
			chatID:        3,
			used:          4,
			count:         2,
			expectAllowed: false,
			expectMessage: true,
		},
		{
			name:          "Above limit with send error",
			limit:         dailyLimit,
			chatID:        4,
			used:          7,
			count:         1,
			expectAllowed: false,
			expectMessage: true,
			simulateErr:   assert.AnError,
		},
		{
			name:          "Zero limit disables quota",
			limit:         0,
			chatID:        5,
			used:          1000,
			count:         10,
			expectAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSender := &mockTextSender{sendError: tt.simulateErr}
			quota := &LookupQuota{
				chats:      map[int64]int{tt.chatID: tt.used},
				mutex:      &sync.Mutex{},
				dailyLimit: tt.limit,
				sender:     mockSender,
			}

			result := quota.CheckLimit(t.Context(), &domain.Message{ChatID: tt.chatID}, tt.count)
			assert.Equal(t, tt.expectAllowed, result)
			if tt.expectMessage {
				assert.Equal(t, 1, mockSender.callCount)
				assert.Contains(t, mockSender.sendReplies[0],
					fmt.Sprintf("limit of %d lookups (%d used)", tt.limit, tt.used))
			} else {
				assert.Equal(t, 0, mockSender.callCount)
			}
		})
	}
}

func TestNewLookupQuota(t *testing.T) {
	viper.Reset()
	viper.Set("lookup.daily_limit", 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockSender := &mockTextSender{}
	quota := NewLookupQuota(ctx, mockSender)

	assert.NotNil(t, quota.chats)
	assert.Equal(t, 10, quota.dailyLimit)
	assert.Equal(t, mockSender, quota.sender)
}

func TestGetNextResetTime(t *testing.T) {
	now := time.Now()
	reset := getNextResetTime()
	assert.Equal(t, 0, reset.Hour())
	assert.Equal(t, 0, reset.Minute())
	assert.Equal(t, 0, reset.Second())
	assert.True(t, reset.After(now))
	assert.LessOrEqual(t, reset.Sub(now), 25*time.Hour)
}
