// Package mitigation searches the topology graph for feasible load transfers
// that reduce a transformer's overload risk. The search is greedy and
// per-neighbor independent: each candidate plan transfers to exactly one
// neighbor, and candidates are ranked by simulated risk reduction.
package mitigation
