package bot

// Observer is told about dispatch outcomes. The metric package implements it.
type Observer interface {
	InteractionDispatched(kind string, handled bool)
	HandlerFailed(kind string)
	ReplyFailed()
	HttpActionDispatched(action string, ok bool)
}

type NopObserver struct{}

func (NopObserver) InteractionDispatched(string, bool) {}
func (NopObserver) HandlerFailed(string)               {}
func (NopObserver) ReplyFailed()                       {}
func (NopObserver) HttpActionDispatched(string, bool)  {}
