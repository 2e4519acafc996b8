// Package narrative turns mitigation plans into operator-ready instructions.
// A generative text backend is attempted with bounded retries; on exhaustion
// the narrator falls back to deterministic templates. The narrator never
// surfaces backend errors to its caller: both ENHANCED and FALLBACK_USED are
// valid terminal outcomes.
package narrative
