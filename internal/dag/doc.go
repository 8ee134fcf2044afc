// Package dag is a small directed graph with cycle detection. The simulator
// uses it to look for combinational loops: behaviours are vertices, and an
// edge b1 -> b2 means b1 writes a node that b2 is sensitive to.
package dag
