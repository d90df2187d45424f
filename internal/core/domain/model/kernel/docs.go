// Package kernel holds the value objects shared by every aggregate of the
// fulfillment domain. Today that is the UUID identifier; everything order-specific
// lives in package order.
package kernel
