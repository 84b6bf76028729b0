package model

// Package model defines domain data structures shared across the client:
// download jobs, status enums, and the snapshot payload returned by the
// backend's status endpoint. Structures are designed for direct rendering
// in list views and explicit state transitions.
