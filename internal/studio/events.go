package studio

// EventType identifies session events.
type EventType int

const (
	// EventImageLoaded carries *importer.Result.
	EventImageLoaded EventType = iota
	// EventDecisionRequired carries *importer.Conflict.
	EventDecisionRequired
	// EventLayersChanged carries []layer.Layer, bottom to top.
	EventLayersChanged
	// EventSelectionChanged carries the selected layer id ("" for none).
	EventSelectionChanged
	// EventAdjustmentsApplied carries pipeline.Applied.
	EventAdjustmentsApplied
	// EventHistoryChanged carries HistoryInfo.
	EventHistoryChanged
	// EventCanvasResized carries viewport.Document.
	EventCanvasResized
	// EventZoomChanged carries the zoom percentage as float64.
	EventZoomChanged
	// EventSaved carries store.ByImage.
	EventSaved
	// EventWarning carries an error that was recovered locally.
	EventWarning
	// EventProcessingChanged carries whether an adjustment is rendering.
	EventProcessingChanged
)

func (e EventType) String() string {
	switch e {
	case EventImageLoaded:
		return "image-loaded"
	case EventDecisionRequired:
		return "decision-required"
	case EventLayersChanged:
		return "layers-changed"
	case EventSelectionChanged:
		return "selection-changed"
	case EventAdjustmentsApplied:
		return "adjustments-applied"
	case EventHistoryChanged:
		return "history-changed"
	case EventCanvasResized:
		return "canvas-resized"
	case EventZoomChanged:
		return "zoom-changed"
	case EventSaved:
		return "saved"
	case EventWarning:
		return "warning"
	case EventProcessingChanged:
		return "processing-changed"
	default:
		return "unknown"
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// On registers an event listener for the specified event type.
func (s *Session) On(event EventType, listener EventListener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Session) Emit(event EventType, data interface{}) {
	s.lmu.RLock()
	listeners := s.listeners[event]
	s.lmu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}
