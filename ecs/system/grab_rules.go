package system

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/vrhands/common"
	"github.com/milk9111/vrhands/ecs/component"
	"go.uber.org/zap"
)

// ScriptLoader returns the source of a named rule script.
type ScriptLoader func(name string) ([]byte, error)

// GrabRules evaluates tengo scripts that may veto a grab. A script sees the
// globals hand, second, grabbable and grabber and denies by setting
// allow = false.
type GrabRules struct {
	load  ScriptLoader
	cache map[string]*tengo.Compiled
}

func NewGrabRules(load ScriptLoader) *GrabRules {
	return &GrabRules{load: load, cache: map[string]*tengo.Compiled{}}
}

// Invalidate drops the compiled copy of name so the next grab recompiles it.
func (r *GrabRules) Invalidate(name string) {
	if r == nil {
		return
	}
	delete(r.cache, name)
}

// Decide runs script for req. A script that fails to load, compile or run
// denies the grab.
func (r *GrabRules) Decide(script string, req component.GrabRequest, grabbable string) component.GrabDecision {
	if r == nil || strings.TrimSpace(script) == "" {
		return component.GrabAllow
	}
	allow, err := r.run(script, req, grabbable)
	if err != nil {
		common.Logger().Warn("grab rule failed",
			zap.String("script", script),
			zap.Uint64("grabbable", req.Grabbable),
			zap.Error(err),
		)
		return component.GrabDeny
	}
	if !allow {
		return component.GrabDeny
	}
	return component.GrabAllow
}

func (r *GrabRules) run(name string, req component.GrabRequest, grabbable string) (bool, error) {
	compiled, err := r.compiled(name)
	if err != nil {
		return false, err
	}
	if err := compiled.Set("hand", req.Hand.String()); err != nil {
		return false, err
	}
	if err := compiled.Set("second", req.Second); err != nil {
		return false, err
	}
	if err := compiled.Set("grabbable", grabbable); err != nil {
		return false, err
	}
	if err := compiled.Set("grabber", int64(req.Grabber)); err != nil {
		return false, err
	}
	if err := compiled.Set("allow", true); err != nil {
		return false, err
	}
	if err := compiled.Run(); err != nil {
		return false, err
	}
	return compiled.Get("allow").Bool(), nil
}

func (r *GrabRules) compiled(name string) (*tengo.Compiled, error) {
	if c, ok := r.cache[name]; ok {
		return c, nil
	}
	if r.load == nil {
		return nil, fmt.Errorf("no loader for rule script %q", name)
	}
	src, err := r.load(name)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript(src)
	_ = script.Add("hand", "")
	_ = script.Add("second", false)
	_ = script.Add("grabbable", "")
	_ = script.Add("grabber", 0)
	_ = script.Add("allow", true)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	r.cache[name] = compiled
	return compiled, nil
}
