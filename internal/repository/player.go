package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

// PlayerRepository is the directory of users and bots.
type PlayerRepository interface {
	SaveUser(ctx context.Context, user *entity.User) error
	GetUser(ctx context.Context, id string) (*entity.User, error)
	SaveBot(ctx context.Context, bot *entity.Bot) error
	GetBot(ctx context.Context, id string) (*entity.Bot, error)
}

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func (that *dbPlayer) SaveUser(ctx context.Context, user *entity.User) error {
	return that.set(ctx, "user:"+user.ID, user)
}

func (that *dbPlayer) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	if err := that.get(ctx, "user:"+id, &user, apperror.ErrPlayerNotFound); err != nil {
		return nil, err
	}

	return &user, nil
}

func (that *dbPlayer) SaveBot(ctx context.Context, bot *entity.Bot) error {
	return that.set(ctx, "bot:"+bot.ID, bot)
}

func (that *dbPlayer) GetBot(ctx context.Context, id string) (*entity.Bot, error) {
	var bot entity.Bot
	if err := that.get(ctx, "bot:"+id, &bot, apperror.ErrBotNotFound); err != nil {
		return nil, err
	}

	return &bot, nil
}

func (that *dbPlayer) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err = that.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

func (that *dbPlayer) get(ctx context.Context, key string, value any, notFound error) error {
	response, err := that.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return notFound
	}

	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err = json.Unmarshal([]byte(response), value); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}

	return nil
}
