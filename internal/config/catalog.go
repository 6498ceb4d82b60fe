package config

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const (
	DefaultLowInventoryThreshold = 10
	DefaultListPerPage           = 10
)

// CatalogConfig holds catalog tunables that can be changed without a restart.
type CatalogConfig struct {
	LowInventoryThreshold int `mapstructure:"lowInventoryThreshold"`
	ListPerPage           int `mapstructure:"listPerPage"`
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		LowInventoryThreshold: DefaultLowInventoryThreshold,
		ListPerPage:           DefaultListPerPage,
	}
}

type CatalogConfigHolder struct {
	current atomic.Value // holds CatalogConfig
}

// NewStaticCatalogConfigHolder returns a holder that never reloads.
func NewStaticCatalogConfigHolder(cfg CatalogConfig) *CatalogConfigHolder {
	holder := &CatalogConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewCatalogConfigHolder(appCfg Config) (*CatalogConfigHolder, error) {
	v := viper.New()

	defaults := DefaultCatalogConfig()
	v.SetDefault("catalog.lowInventoryThreshold", defaults.LowInventoryThreshold)
	v.SetDefault("catalog.listPerPage", defaults.ListPerPage)

	if path := strings.TrimSpace(appCfg.CatalogConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("catalog")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/storefront")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		found = false
	}

	var cfg CatalogConfig
	if err := v.UnmarshalKey("catalog", &cfg); err != nil {
		return nil, err
	}
	if err := validateCatalogConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticCatalogConfigHolder(cfg)
	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CatalogConfig
		if err := v.UnmarshalKey("catalog", &updated); err != nil {
			log.Printf("[catalog-config] reload failed: %v", err)
			return
		}
		if err := holder.Update(updated); err != nil {
			log.Printf("[catalog-config] invalid config ignored: %v", err)
			return
		}
		log.Printf("[catalog-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *CatalogConfigHolder) Get() CatalogConfig {
	if h == nil {
		return DefaultCatalogConfig()
	}
	return h.current.Load().(CatalogConfig)
}

// Update swaps in cfg when it is valid; readers see it on their next Get.
func (h *CatalogConfigHolder) Update(cfg CatalogConfig) error {
	if err := validateCatalogConfig(cfg); err != nil {
		return err
	}
	h.current.Store(cfg)
	return nil
}

func validateCatalogConfig(cfg CatalogConfig) error {
	if cfg.LowInventoryThreshold <= 0 {
		return errors.New("catalog.lowInventoryThreshold must be positive")
	}
	if cfg.ListPerPage <= 0 || cfg.ListPerPage > 250 {
		return errors.New("catalog.listPerPage must be between 1 and 250")
	}
	return nil
}
