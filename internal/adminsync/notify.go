package adminsync

import (
	evbus "github.com/asaskevich/EventBus"
)

const (
	TopicToastSuccess = "toast:success"
	TopicToastFailure = "toast:failure"
)

// Toast is a transient user-facing message.
type Toast struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notifier publishes toasts on an event bus so any rendering surface
// can subscribe without the controller knowing about it.
type Notifier struct {
	bus evbus.Bus
}

func NewNotifier(bus evbus.Bus) *Notifier {
	return &Notifier{bus: bus}
}

func (n *Notifier) Success(message string) {
	if n == nil || n.bus == nil {
		return
	}
	n.bus.Publish(TopicToastSuccess, Toast{Level: "success", Message: message})
}

func (n *Notifier) Failure(message string) {
	if n == nil || n.bus == nil {
		return
	}
	n.bus.Publish(TopicToastFailure, Toast{Level: "failure", Message: message})
}
