// Package throttle rate-limits outbound requests with a token bucket
// from [golang.org/x/time/rate].
//
// Wrap a transport with [New]:
//
//	rt, err := throttle.New(throttle.Config{RPS: 10, Burst: 5}, logger, http.DefaultTransport)
//	hc := &http.Client{Transport: rt}
//
// Requests over the limit block until a token is available or their
// context ends.
package throttle
