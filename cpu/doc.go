// Package cpu implements an S7 statement list (STL/AWL) execution engine.
//
// The CPU holds up to four 32-bit accumulators, two address registers
// (AR1, AR2), the status word, the DB and DI data block registers, and
// the process images, flags, timers and counters. A Program of code
// blocks (OB, FC, FB, SFC, SFB) and data blocks is checked by Load and
// then run one scan cycle at a time by RunCycle, starting at OB 1.
//
// Instructions are decoded ahead of time into Instruction values whose
// operands are addressed by Area, width and offset. Both the German
// (SIMATIC) and English (international) mnemonic sets are accepted and
// printed.
package cpu
