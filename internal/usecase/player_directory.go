package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gridgames-backend/internal/apperror"
	"github.com/rocketscienceinc/gridgames-backend/internal/entity"
)

type playerStore interface {
	SaveUser(ctx context.Context, user *entity.User) error
	GetUser(ctx context.Context, id string) (*entity.User, error)
	SaveBot(ctx context.Context, bot *entity.Bot) error
	GetBot(ctx context.Context, id string) (*entity.Bot, error)
}

type PlayerDirectory struct {
	store playerStore
}

func NewPlayerDirectory(store playerStore) *PlayerDirectory {
	return &PlayerDirectory{
		store: store,
	}
}

func (that *PlayerDirectory) SaveUser(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		return fmt.Errorf("%w: user id is required", apperror.ErrInvalidPlayer)
	}

	if err := that.store.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

func (that *PlayerDirectory) SaveBot(ctx context.Context, bot *entity.Bot) error {
	if bot.ID == "" || bot.URL == "" {
		return fmt.Errorf("%w: bot id and url are required", apperror.ErrInvalidPlayer)
	}

	if err := that.store.SaveBot(ctx, bot); err != nil {
		return fmt.Errorf("failed to save bot: %w", err)
	}

	return nil
}

func (that *PlayerDirectory) GetBot(ctx context.Context, id string) (*entity.Bot, error) {
	return that.store.GetBot(ctx, id)
}

// GetBots resolves the given ids. Unknown ids are left out.
func (that *PlayerDirectory) GetBots(ctx context.Context, ids []string) (map[string]*entity.Bot, error) {
	out := make(map[string]*entity.Bot, len(ids))
	for _, id := range ids {
		bot, err := that.store.GetBot(ctx, id)
		if errors.Is(err, apperror.ErrBotNotFound) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to get bot %s: %w", id, err)
		}

		out[id] = bot
	}

	return out, nil
}

// GetPublicInfo looks a participant up among users first, then bots.
func (that *PlayerDirectory) GetPublicInfo(ctx context.Context, id string) (*entity.PlayerPublicInfo, error) {
	user, err := that.store.GetUser(ctx, id)
	if err == nil {
		return &entity.PlayerPublicInfo{PlayerID: user.ID, Name: user.Name, Emoji: user.Emoji, Type: entity.HumanType}, nil
	}

	if !errors.Is(err, apperror.ErrPlayerNotFound) {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	bot, err := that.store.GetBot(ctx, id)
	if errors.Is(err, apperror.ErrBotNotFound) {
		return nil, apperror.ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get bot: %w", err)
	}

	return &entity.PlayerPublicInfo{PlayerID: bot.ID, Name: bot.Name, Emoji: bot.Emoji, Type: entity.BotType}, nil
}
