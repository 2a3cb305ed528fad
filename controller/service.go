package controller

import (
	"fmt"

	"github.com/polyvarium/heatctl/fsm"
	"github.com/polyvarium/heatctl/service"
)

// AsService adapts a Controller to the service.Service lifecycle
// contract (the queue, timers, sampler and FSM live inside one
// Controller). The commands under cmd/ do not use it; they drive the
// Controller directly.
type AsService struct {
	c *Controller
}

// NewService wraps c for registration with a service hub.
func NewService(c *Controller) *AsService {
	return &AsService{c: c}
}

func (s *AsService) Name() string { return "controller" }

func (s *AsService) Dependencies() []string { return nil }

// Init takes an optional first argument: the fsm.State to initialize into.
// Defaults to fsm.Idle if no argument is supplied.
func (s *AsService) Init(args ...any) error {
	initial := fsm.Idle
	if len(args) > 0 {
		st, ok := args[0].(fsm.State)
		if !ok {
			return fmt.Errorf("controller: Init expects fsm.State, got %T", args[0])
		}
		initial = st
	}
	s.c.Init(initial)
	return nil
}

// Start is a no-op: the controller has no background goroutine of its
// own, it is driven by an external ticker's repeated Step calls.
func (s *AsService) Start() error { return nil }

// Stop is a no-op and idempotent, satisfying the Service contract.
func (s *AsService) Stop() error { return nil }

var _ service.Service = (*AsService)(nil)
