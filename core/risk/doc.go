// Package risk scores predicted overload for transformers. The score is a
// transparent weighted combination of three components (overload, thermal,
// cascading), each in [0,1], with a deterministic operator-readable
// explanation.
package risk
