package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/nftmarket/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type options struct {
	name           string
	beforeStart    func()
	afterEnded     func()
	afterRecovered func(p interface{}, stack []byte)
}

type Option func(*options)

// WithName adds a "goroutine" field to the panic log
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithBeforeStart(f func()) Option {
	return func(o *options) { o.beforeStart = f }
}

func WithAfterEnded(f func()) Option {
	return func(o *options) { o.afterEnded = f }
}

func WithAfterRecovered(f func(p interface{}, stack []byte)) Option {
	return func(o *options) { o.afterRecovered = f }
}

// RecoverableGo runs f in a new goroutine. The returned channel receives one
// PanicEvent if f panics and is closed otherwise.
func RecoverableGo(f func(), opts ...Option) <-chan *PanicEvent {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	panicChan := make(chan *PanicEvent, 1)

	go func() {
		defer func() {
			if o.afterEnded != nil {
				o.afterEnded()
			}

			p := recover()
			if p == nil {
				close(panicChan)
				return
			}

			stack := debug.Stack()
			log.Log().WithFields(log.Fields{
				"goroutine": o.name,
				"err":       p,
				"stack":     string(stack),
			}).Error("panic")

			if o.afterRecovered != nil {
				o.afterRecovered(p, stack)
			}
			panicChan <- &PanicEvent{Panic: p, Stack: stack}
			close(panicChan)
		}()

		if o.beforeStart != nil {
			o.beforeStart()
		}

		f()
	}()

	return panicChan
}
