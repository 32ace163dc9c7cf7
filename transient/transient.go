// Copyright 2021 The reqx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"net"
	"syscall"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize.
//
// The category Not means the error is not transient from the
// perspective of completing an HTTP request attempt successfully, or in
// other words that a retry after encountering this error is very
// unlikely to succeed.
//
// All other categories indicate the error is transient: a retry after
// encountering the error has some prospect of success.
type Category int

const (
	// Not indicates any non-transient error, including nil.
	Not Category = iota
	// Timeout indicates a client-side timeout. The server may be going
	// through a temporary period of slowness, or the client may succeed
	// on a future attempt waiting longer.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout() function that reports true.
	Timeout
	// ConnRefused indicates the remote host refused the connection
	// (POSIX ECONNREFUSED). This commonly happens while the remote
	// service is restarting and is not listening yet.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active TCP
	// connection (POSIX ECONNRESET), typically because a load balancer
	// or a prematurely stopped service dropped it.
	ConnReset
	// ConnAborted indicates the local network stack aborted the
	// connection (POSIX ECONNABORTED).
	ConnAborted
	// Lookup indicates a DNS lookup failure which the resolver reports
	// as temporary.
	Lookup
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"ConnAborted",
	"Lookup",
}

// String returns the name of the category.
func (cat Category) String() string {
	if cat < 0 || int(cat) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[cat]
}

// Categorize returns the transience category of the given error. All
// non-nil transient errors result in a transience category other than
// Not. A nil error, and an error that is not transient from the
// perspective of completing an HTTP request attempt, both produce the
// return value Not.
//
// Categorize looks at wrapped cause errors contained within err, not
// just err itself. It never consults a Temporary() method other than
// the one on *net.DNSError, as the general semantics of Temporary()
// are unclear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET:
			return ConnReset
		case syscall.ECONNREFUSED:
			return ConnRefused
		case syscall.ECONNABORTED:
			return ConnAborted
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary {
		return Lookup
	}

	return Not
}

// Is reports whether err falls in any transient category.
func Is(err error) bool {
	return Categorize(err) != Not
}

type hasTimeout interface {
	Timeout() bool
}
