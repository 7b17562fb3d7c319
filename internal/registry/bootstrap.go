package registry

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"komd/internal/logging"
	"komd/pkg/types"
)

// StopOrder selects the order in which StopAll visits modules.
type StopOrder int

const (
	// StopReverse stops the most recently started module first.
	StopReverse StopOrder = iota
	// StopForward stops modules in start order.
	StopForward
)

// ParseStopOrder maps "forward" to StopForward; everything else is reverse.
func ParseStopOrder(s string) StopOrder {
	if strings.EqualFold(strings.TrimSpace(s), "forward") {
		return StopForward
	}
	return StopReverse
}

func (o StopOrder) String() string {
	if o == StopForward {
		return "forward"
	}
	return "reverse"
}

// StopOptions tunes StopAll. The zero value stops in reverse order and
// waits for every Join without a deadline.
type StopOptions struct {
	Order StopOrder
	// JoinTimeout bounds each module's Join. Zero waits forever.
	JoinTimeout time.Duration
}

// StartAll instantiates and starts each definition in order. A definition
// that fails (duplicate name, unknown implementation, Start error or panic)
// is logged and skipped; the remaining definitions still start. The
// returned slice holds one error per skipped definition.
func (r *Registry) StartAll(defs []types.ModuleDefinition) []error {
	var errs []error
	for _, def := range defs {
		if err := r.startOne(def); err != nil {
			r.log.Error().Err(err).Str("module", def.Name).Str("implementation", def.Implementation).Msg("module not started")
			errs = append(errs, err)
		}
	}
	return errs
}

func (r *Registry) startOne(def types.ModuleDefinition) error {
	if strings.TrimSpace(def.Name) == "" {
		return errEmptyName
	}
	if r.has(def.Name) {
		return ErrDuplicateModuleName(def.Name)
	}
	factory, ok := r.factories[def.Implementation]
	if !ok {
		return ErrUnknownImplementation(def.Implementation)
	}
	log := logging.ForModule(r.log, def.Name)
	m := factory(Env{Name: def.Name, Registry: r, Logger: log})
	params := def.Parameters
	if params == nil {
		params = map[string]string{}
	}
	if err := safeStart(m, params); err != nil {
		return ErrModuleStartup(def.Name, err)
	}
	e := &entry{name: def.Name, impl: def.Implementation, classpath: append([]string(nil), def.Classpath...), mod: m}
	if err := r.register(e); err != nil {
		// Lost a race with a concurrent Register; the instance we just
		// started must not outlive this call.
		m.Stop()
		m.Join()
		return err
	}
	log.Info().Str("implementation", def.Implementation).Strs("classpath", def.Classpath).Msg("module running")
	return nil
}

func safeStart(m Module, params map[string]string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during start: %v", rec)
		}
	}()
	return m.Start(params)
}

// StopAll signals Stop to every running module, then joins each in the
// same order. A join exceeding opts.JoinTimeout is logged and reported in
// the returned error; shutdown continues with the next module.
func (r *Registry) StopAll(opts StopOptions) error {
	entries := r.running()
	if opts.Order == StopReverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	for _, e := range entries {
		r.log.Debug().Str("module", e.name).Msg("stopping module")
		e.mod.Stop()
	}
	var errs []error
	for _, e := range entries {
		if !join(e.mod, opts.JoinTimeout) {
			err := joinTimeoutError{name: e.name}
			r.log.Warn().Str("module", e.name).Dur("timeout", opts.JoinTimeout).Msg("module join timed out")
			errs = append(errs, err)
			continue
		}
		r.markStopped(e)
		r.log.Info().Str("module", e.name).Msg("module stopped")
	}
	return errors.Join(errs...)
}

// join waits for m.Join, bounded by timeout when positive. It reports
// whether the module finished.
func join(m Module, timeout time.Duration) bool {
	if timeout <= 0 {
		m.Join()
		return true
	}
	done := make(chan struct{})
	go func() {
		m.Join()
		close(done)
	}()
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
