package speech

// Output is the port announcements are handed to. Implementations speak the
// text somewhere (a WebSocket feed, a TTS engine); delivery is
// fire-and-forget and completion is never awaited.
type Output interface {
	Speak(text string)
}

// OutputFunc adapts a plain function to the Output interface.
type OutputFunc func(text string)

func (f OutputFunc) Speak(text string) { f(text) }
