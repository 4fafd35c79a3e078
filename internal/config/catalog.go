package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CatalogItem is one purchasable entry in the rewards shop.
// MaxPerUser <= 0 means unlimited repeat purchases.
type CatalogItem struct {
	ID         string `mapstructure:"id"`
	Name       string `mapstructure:"name"`
	Cost       int64  `mapstructure:"cost"`
	MaxPerUser int    `mapstructure:"maxPerUser"`
}

type ShopConfig struct {
	Items []CatalogItem `mapstructure:"items"`
}

func DefaultShopConfig() ShopConfig {
	return ShopConfig{
		Items: []CatalogItem{
			{ID: "avatar_frame_gold", Name: "Gold Avatar Frame", Cost: 50, MaxPerUser: 1},
			{ID: "profile_banner", Name: "Profile Banner", Cost: 30, MaxPerUser: 1},
			{ID: "username_glow", Name: "Username Glow", Cost: 20, MaxPerUser: 1},
			{ID: "streak_freeze", Name: "Streak Freeze", Cost: 15, MaxPerUser: 0},
		},
	}
}

// ShopCatalogHolder keeps the live rewards catalog, reloaded on file change.
type ShopCatalogHolder struct {
	current atomic.Value // holds ShopConfig
}

func NewShopCatalogHolder() (*ShopCatalogHolder, error) {
	v := viper.New()

	v.SetConfigName("catalog")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/kudos/config") // Volume-mounted config
	v.AddConfigPath("/etc/kudos")            // System config
	v.AddConfigPath(".")                     // Current directory (dev mode)

	v.SetEnvPrefix("KUDOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultShopConfig()
		v.SetDefault("shop.items", defaults.Items)
	}

	var cfg ShopConfig
	if err := v.UnmarshalKey("shop", &cfg); err != nil {
		return nil, err
	}
	if err := validateShopConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ShopCatalogHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ShopConfig
		if err := v.UnmarshalKey("shop", &updated); err != nil {
			log.Printf("[shop-catalog] reload failed: %v", err)
			return
		}
		if err := validateShopConfig(updated); err != nil {
			log.Printf("[shop-catalog] invalid catalog ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[shop-catalog] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ShopCatalogHolder) Get() ShopConfig {
	return h.current.Load().(ShopConfig)
}

// Item looks an item up by ID in the live catalog.
func (h *ShopCatalogHolder) Item(id string) (CatalogItem, bool) {
	for _, item := range h.Get().Items {
		if item.ID == id {
			return item, true
		}
	}
	return CatalogItem{}, false
}

// NewStaticCatalogHolder builds a holder around a fixed catalog, for tests.
func NewStaticCatalogHolder(cfg ShopConfig) *ShopCatalogHolder {
	holder := &ShopCatalogHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateShopConfig(cfg ShopConfig) error {
	if len(cfg.Items) == 0 {
		return errors.New("shop.items cannot be empty")
	}
	seen := make(map[string]struct{}, len(cfg.Items))
	for _, item := range cfg.Items {
		if strings.TrimSpace(item.ID) == "" {
			return errors.New("shop item id cannot be empty")
		}
		if item.Cost <= 0 {
			return errors.New("shop item cost must be positive")
		}
		if _, dup := seen[item.ID]; dup {
			return errors.New("duplicate shop item id: " + item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}
