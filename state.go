// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package reqx

// A State is the run state of a request manager.
//
// A new manager is Idle. The first request moves it to Running. A
// stop-the-line classification moves it to Frozen until the recovery
// action completes, when it returns to Running. There is no terminal
// state.
type State int

const (
	// Idle means no request has been dispatched yet.
	Idle State = iota
	// Running means requests start as soon as they are dispatched.
	Running
	// Frozen means a stop-the-line recovery action is in flight and
	// newly dispatched requests are queued until it completes.
	Frozen
	stateSentinel
)

var stateNames = []string{
	"Idle",
	"Running",
	"Frozen",
}

// States returns a slice containing all manager states.
func States() []State {
	return []State{Idle, Running, Frozen}
}

// Name returns the name of the state.
func (s State) Name() string {
	if s < 0 || s >= stateSentinel {
		return "Unknown"
	}
	return stateNames[int(s)]
}

// String returns the name of the state.
func (s State) String() string {
	return s.Name()
}
