// Package chanlog adapts a github.com/joeycumines/logiface logger to
// chanflow's Logger interface, the production-grade counterpart to
// chanflow's built-in no-op default. Kept as a separate subpackage so
// importing chanflow never forces a logiface dependency on callers who
// only want the no-op logger.
package chanlog

import "github.com/joeycumines/logiface"

// Adapter wraps a *logiface.Logger[E] to satisfy chanflow.Logger.
type Adapter[E logiface.Event] struct {
	L *logiface.Logger[E]
}

// From constructs an Adapter, the form most call sites use directly with
// chanflow.SetLogger or chanflow.WithLogger.
func From[E logiface.Event](l *logiface.Logger[E]) Adapter[E] {
	return Adapter[E]{L: l}
}

func (a Adapter[E]) Debug(msg string, kv ...any) { a.log(a.L.Debug(), msg, kv) }
func (a Adapter[E]) Info(msg string, kv ...any)  { a.log(a.L.Info(), msg, kv) }
func (a Adapter[E]) Warn(msg string, kv ...any)  { a.log(a.L.IfWarning().Builder(), msg, kv) }
func (a Adapter[E]) Error(msg string, kv ...any) { a.log(a.L.Err(), msg, kv) }

// log applies alternating key/value pairs to b as fields, then emits msg.
// An odd trailing key with no value is logged under "extra" rather than
// dropped silently.
func (a Adapter[E]) log(b *logiface.Builder[E], msg string, kv []any) {
	if b == nil {
		return
	}
	i := 0
	for ; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b = b.Any(key, kv[i+1])
	}
	if i < len(kv) {
		b = b.Any("extra", kv[i])
	}
	b.Log(msg)
}
