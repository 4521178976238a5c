package trace

import "errors"

// teeTracer fans events out to several tracers.
type teeTracer struct {
	tracers []Tracer
	level   Level
}

// Tee combines tracers into one. Disabled tracers are dropped; the level is
// the most verbose of the rest, each tracer still filtering on its own.
// With nothing left Tee returns Nop, with one tracer it returns it as-is.
func Tee(tracers ...Tracer) Tracer {
	live := make([]Tracer, 0, len(tracers))
	level := LevelOff
	for _, t := range tracers {
		if t == nil || !t.Enabled() {
			continue
		}
		live = append(live, t)
		level = max(level, t.Level())
	}
	switch len(live) {
	case 0:
		return Nop
	case 1:
		return live[0]
	}
	return &teeTracer{tracers: live, level: level}
}

func (t *teeTracer) Emit(ev *Event) {
	for _, tr := range t.tracers {
		// каждый получает свою копию: стрим проставляет Seq
		cp := *ev
		tr.Emit(&cp)
	}
}

func (t *teeTracer) Flush() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Flush())
	}
	return errors.Join(errs...)
}

func (t *teeTracer) Close() error {
	var errs []error
	for _, tr := range t.tracers {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

func (t *teeTracer) Level() Level  { return t.level }
func (t *teeTracer) Enabled() bool { return t.level > LevelOff }
