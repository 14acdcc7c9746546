package overlay

// TouchDelegate decides what a touch on an annotation widget does. A widget
// holds at most one delegate, bound when the widget is attached.
type TouchDelegate interface {
	OnAnnotationWidgetTouched(widget AnnotationWidget)
}

// TouchDelegateFunc adapts a plain function to TouchDelegate.
type TouchDelegateFunc func(widget AnnotationWidget)

func (f TouchDelegateFunc) OnAnnotationWidgetTouched(widget AnnotationWidget) {
	f(widget)
}
