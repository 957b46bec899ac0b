// Package config loads keycase settings.
//
// Settings come from three places, later ones winning:
//
//  1. Built-in defaults (Default)
//  2. The TOML config file, usually ~/.config/keycase/config.toml
//  3. KEYCASE_* environment variables
//
// A config file looks like:
//
//	[log]
//	level = "debug"
//	file = "/tmp/keycase.log"
//
//	[session]
//	notify = true
//	default_style = "snake"
//
//	[keymap]
//	"Alt+c" = "case.camel"
//	"Ctrl+Q" = ""          # unbind
//
//	[plugin]
//	enabled = true
//	init = "~/.config/keycase/init.lua"
//
// A Watcher reloads the file when it changes on disk.
package config
