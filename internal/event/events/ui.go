package events

import "github.com/dshills/keycase/internal/event/topic"

// UI and config topics.
const (
	TopicUINotify       topic.Topic = "ui.notify"
	TopicConfigReloaded topic.Topic = "config.reloaded"
)

// Level is the severity of a notification.
type Level uint8

const (
	LevelInfo Level = iota
	LevelError
)

// Notification is a message for the status line.
type Notification struct {
	Message string
	Level   Level
}

// EventTopic implements event.TopicProvider.
func (Notification) EventTopic() topic.Topic { return TopicUINotify }

// ConfigReloaded is published after the config file was re-read.
type ConfigReloaded struct {
	Path string
	Err  error
}

// EventTopic implements event.TopicProvider.
func (ConfigReloaded) EventTopic() topic.Topic { return TopicConfigReloaded }
