package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Watch re-reads the config file whenever it is written and passes the
// reloaded, validated Config to onChange. An invalid file is reported as a
// non-nil error and a nil Config; the previous settings stay in effect.
//
// A config file must have been read (viper.ReadInConfig) before calling Watch.
func Watch(onChange func(*Config, error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load()
		onChange(cfg, err)
	})
	viper.WatchConfig()
}
