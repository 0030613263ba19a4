package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// Watch re-decodes the configuration whenever the backing file changes and
// hands the result to onChange. Invalid edits are reported to onError and
// the previous configuration stays in effect. Returns false when there is
// no config file to watch.
func Watch(v *viper.Viper, onChange func(*Config), onError func(error)) bool {
	if v == nil || v.ConfigFileUsed() == "" {
		return false
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		pv := viper.New()
		pv.SetConfigFile(e.Name)
		if err := pv.ReadInConfig(); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if err := v.MergeConfigMap(pv.AllSettings()); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return true
}
