package service

import (
	"sort"
	"sync"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
)

// Registry хранит пресеты стратегий и активные наборы по символам.
// Чтения частые (каждая свеча), записи редкие (команды пользователя).
type Registry struct {
	mu      sync.RWMutex
	presets map[models.StrategyType]models.StrategyConfig
	active  map[string]map[models.StrategyType]Strategy
}

func NewRegistry(cfg *config.Config) (*Registry, error) {
	presets, err := LoadPresets(cfg.Engine.PresetsFile)
	if err != nil {
		return nil, err
	}
	return &Registry{
		presets: presets,
		active:  make(map[string]map[models.StrategyType]Strategy),
	}, nil
}

// Enable включает стратегии для символа по текущим пресетам.
// Повторное включение уже активной стратегии — no-op (конфиг тот же,
// инстанс не пересоздаётся). Возвращает итоговый активный набор.
func (r *Registry) Enable(symbol string, types []models.StrategyType) ([]models.StrategyType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.active[symbol]
	if set == nil {
		set = make(map[models.StrategyType]Strategy)
		r.active[symbol] = set
	}

	for _, t := range types {
		if _, ok := set[t]; ok {
			continue
		}
		preset, ok := r.presets[t]
		if !ok {
			preset = models.StrategyConfig{Type: t}
		}
		inst, err := NewStrategy(preset)
		if err != nil {
			return nil, err
		}
		set[t] = inst
	}

	return typesOf(set), nil
}

// Disable выключает стратегии; пустой список = все. Стратегия перестаёт
// оцениваться со следующей свечи.
func (r *Registry) Disable(symbol string, types []models.StrategyType) []models.StrategyType {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.active[symbol]
	if set == nil {
		return nil
	}

	if len(types) == 0 {
		delete(r.active, symbol)
		return nil
	}
	for _, t := range types {
		delete(set, t)
	}
	if len(set) == 0 {
		delete(r.active, symbol)
		return nil
	}
	return typesOf(set)
}

// SetPreset атомарно заменяет конфиг стратегии: пресет обновляется и во
// всех символах, где стратегия активна, старый инстанс меняется на новый.
// Сигналы старого инстанса, уже ушедшие в текущий цикл, не отзываются.
func (r *Registry) SetPreset(cfg models.StrategyConfig) error {
	inst, err := NewStrategy(cfg)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.presets[cfg.Type] = cfg
	// инстанс без состояния, один на все символы
	for _, set := range r.active {
		if _, ok := set[cfg.Type]; ok {
			set[cfg.Type] = inst
		}
	}
	return nil
}

// ActiveFor — снапшот активных стратегий символа в фиксированном порядке.
func (r *Registry) ActiveFor(symbol string) []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.active[symbol]
	if len(set) == 0 {
		return nil
	}
	out := make([]Strategy, 0, len(set))
	for _, t := range models.AllStrategies() {
		if s, ok := set[t]; ok {
			out = append(out, s)
		}
	}
	return out
}

func (r *Registry) ActiveTypes(symbol string) []models.StrategyType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return typesOf(r.active[symbol])
}

// WindowCapacity — требуемая ёмкость окна символа: максимум min_candles
// по активным стратегиям.
func (r *Registry) WindowCapacity(symbol string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	max := 0
	for _, s := range r.active[symbol] {
		if n := s.MinCandles(); n > max {
			max = n
		}
	}
	return max
}

func (r *Registry) BaseWeight(t models.StrategyType) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if cfg, ok := r.presets[t]; ok {
		return cfg.BaseWeight
	}
	return 0
}

func (r *Registry) Symbols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.active))
	for s := range r.active {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func typesOf(set map[models.StrategyType]Strategy) []models.StrategyType {
	if len(set) == 0 {
		return nil
	}
	out := make([]models.StrategyType, 0, len(set))
	for _, t := range models.AllStrategies() {
		if _, ok := set[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
