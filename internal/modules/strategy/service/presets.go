package service

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

// базовые веса агрегатора; стратегии вне таблицы получают residual из конфига
var defaultBaseWeights = map[models.StrategyType]float64{
	models.StrategyRSI:       0.32,
	models.StrategyIchimoku:  0.27,
	models.StrategyMACD:      0.23,
	models.StrategyBollinger: 0.18,
}

type presetFile struct {
	Strategies map[string]presetEntry `yaml:"strategies"`
}

type presetEntry struct {
	BaseWeight float64               `yaml:"base_weight"`
	Params     models.StrategyParams `yaml:"params"`
}

// LoadPresets читает yaml с параметрами стратегий. Файл опционален:
// без него все стратегии получают дефолтные параметры и веса.
func LoadPresets(path string) (map[models.StrategyType]models.StrategyConfig, error) {
	presets := make(map[models.StrategyType]models.StrategyConfig, len(models.AllStrategies()))
	for _, t := range models.AllStrategies() {
		presets[t] = models.StrategyConfig{Type: t, BaseWeight: defaultBaseWeights[t]}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("[STRAT] presets file %s not found, using defaults", path)
			return presets, nil
		}
		return nil, errors.Wrap(err, "read presets")
	}

	var pf presetFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, errors.Wrap(err, "unmarshal presets")
	}

	for name, entry := range pf.Strategies {
		t, ok := models.ParseStrategyType(name)
		if !ok {
			return nil, errors.Wrapf(ErrUnknownStrategy, "presets: %q", name)
		}
		cfg := presets[t]
		cfg.Params = entry.Params
		if entry.BaseWeight > 0 {
			cfg.BaseWeight = entry.BaseWeight
		}
		presets[t] = cfg
	}

	return presets, nil
}
