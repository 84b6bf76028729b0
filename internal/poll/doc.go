// Package poll drives the status endpoint. The backend offers no push
// channel, so the client compensates with a single-flight loop: at most one
// poll cycle is ever in flight, new-job notifications merely (re)start the
// loop, and a snapshot reporting global completion returns it to idle.
//
// Reconciliation applies a snapshot's progress updates before its errors,
// so a job that both progressed and failed within one cycle always ends up
// Errored.
package poll
