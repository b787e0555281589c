package service

import (
	"github.com/pkg/errors"

	"signal_bot/internal/models"
)

// ErrUnknownStrategy — идентификатор стратегии не из известного набора.
var ErrUnknownStrategy = errors.New("unknown strategy")

// NewStrategy собирает инстанс по конфигу. Нулевые параметры заменяются
// дефолтами конкретной стратегии.
func NewStrategy(cfg models.StrategyConfig) (Strategy, error) {
	switch cfg.Type {
	case models.StrategyRSI:
		return NewRSI(cfg.Params), nil
	case models.StrategyMACD:
		return NewMACD(cfg.Params), nil
	case models.StrategyBollinger:
		return NewBollinger(cfg.Params), nil
	case models.StrategyIchimoku:
		return NewIchimoku(cfg.Params), nil
	case models.StrategyHarmonic:
		return NewHarmonic(cfg.Params), nil
	case models.StrategyVolumeProfile:
		return NewVolumeProfile(cfg.Params), nil
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", cfg.Type)
	}
}
