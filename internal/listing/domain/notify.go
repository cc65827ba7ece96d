package domain

// FlashKind is the category of a one-time user notice.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Notifier receives notices that are shown on the next rendered view.
type Notifier interface {
	Flash(kind FlashKind, message string)
}

// Flash is a stored notice.
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// FlashRecorder is a Notifier that keeps notices in memory.
type FlashRecorder struct {
	Flashes []Flash
}

func (r *FlashRecorder) Flash(kind FlashKind, message string) {
	r.Flashes = append(r.Flashes, Flash{Kind: kind, Message: message})
}

// Last returns the most recent notice of kind, or "" if none.
func (r *FlashRecorder) Last(kind FlashKind) string {
	for i := len(r.Flashes) - 1; i >= 0; i-- {
		if r.Flashes[i].Kind == kind {
			return r.Flashes[i].Message
		}
	}
	return ""
}
