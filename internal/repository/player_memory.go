package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

type memoryPlayer struct {
	mu    sync.RWMutex
	users map[string]entity.User
	bots  map[string]entity.Bot
}

func NewMemoryPlayerRepository() PlayerRepository {
	return &memoryPlayer{
		users: make(map[string]entity.User),
		bots:  make(map[string]entity.Bot),
	}
}

func (that *memoryPlayer) SaveUser(_ context.Context, user *entity.User) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.users[user.ID] = *user

	return nil
}

func (that *memoryPlayer) GetUser(_ context.Context, id string) (*entity.User, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	user, ok := that.users[id]
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	return &user, nil
}

func (that *memoryPlayer) SaveBot(_ context.Context, bot *entity.Bot) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.bots[bot.ID] = *bot

	return nil
}

func (that *memoryPlayer) GetBot(_ context.Context, id string) (*entity.Bot, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	bot, ok := that.bots[id]
	if !ok {
		return nil, apperror.ErrBotNotFound
	}

	return &bot, nil
}
