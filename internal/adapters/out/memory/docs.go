// Package memory holds single-node implementations of the transition gate and the
// change feed. They are used when no Redis address is configured and in tests.
package memory
