// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cardinalhq/flagrunner/propindex"
)

// Config aggregates configuration for the application.
// Each field is owned by its respective package.
type Config struct {
	Redis         RedisConfig         `mapstructure:"redis"`
	FlagSync      FlagSyncConfig      `mapstructure:"flag_sync"`
	PropertyIndex PropertyIndexConfig `mapstructure:"property_index"`
}

// RedisConfig locates the flag cache.
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// FlagSyncConfig controls the periodic store-to-cache flag refresh.
type FlagSyncConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type PropertyIndexConfig struct {
	Builder   propindex.Config          `mapstructure:"builder"`
	Scheduler propindex.SchedulerConfig `mapstructure:"scheduler"`
}

// Load reads configuration from files and environment variables.
// Environment variables use the prefix "FLAGRUNNER" and the dot character
// in keys is replaced by an underscore. For example, "redis.addr" becomes
// "FLAGRUNNER_REDIS_ADDR".
func Load() (*Config, error) {
	cfg := &Config{
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		FlagSync: FlagSyncConfig{
			Interval: 30 * time.Second,
		},
		PropertyIndex: PropertyIndexConfig{
			Builder:   propindex.DefaultConfig(),
			Scheduler: propindex.DefaultSchedulerConfig(),
		},
	}

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("FLAGRUNNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
