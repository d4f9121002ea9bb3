// Package app ties the drawing registry, capture machine and viewport into
// the takeoff workspace driven by the UI.
package app

import (
	"log"
	"sync"
)

// EventType identifies different workspace events.
type EventType int

const (
	EventDrawingsChanged EventType = iota
	EventActiveChanged
	EventBitmapLoaded
	EventMeasurementsChanged
	EventDraftChanged
	EventZoomChanged
	EventScaleChanged
	EventSelectionChanged
	EventModified
	EventProjectLoaded
	EventProjectSaved
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

type events struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventListener
}

// On registers an event listener for the specified event type.
func (e *events) On(event EventType, listener EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[event] = append(e.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (e *events) Emit(event EventType, data interface{}) {
	e.mu.RLock()
	listeners := e.listeners[event]
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Severity grades a notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "info"
}

// Notifier shows a message to the user.
type Notifier func(message string, severity Severity)

// LogNotifier writes notifications to the standard logger.
func LogNotifier(message string, severity Severity) {
	log.Printf("Workspace [%s]: %s", severity, message)
}
