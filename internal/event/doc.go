package event

// Package event provides a small fan-out bus so any part of the client can
// announce that a new download job was just created. The poll loop
// subscribes and (re)starts itself reactively; because starting is
// idempotent, bursts of submissions collapse into a single active loop.
