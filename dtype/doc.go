// Package dtype implements the elementary data types of the statement-list
// CPU and the bit-exact numeric encodings that travel through its
// accumulators: packed BCD, S5TIME durations, 32-bit IEEE-754 REAL values
// with the target CPU's denormal and NaN handling, and 32-bit area pointers.
package dtype
