// Package internal holds iterator helpers shared by the loader, the
// emulator and the command line tool.
package internal

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Concat yields every value of each sequence in turn.
func Concat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for v := range seq {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Concat2 yields every pair of each sequence in turn.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Merge collects the dictionaries into a new map. Later keys win.
func Merge[M ~map[K]V, K comparable, V any](dicts ...M) M {
	seqs := make([]iter.Seq2[K, V], 0, len(dicts))
	for _, dict := range dicts {
		seqs = append(seqs, maps.All(dict))
	}
	return maps.Collect(Concat2(seqs...))
}

// Sorted yields the pairs of 'seq' ordered by key.
func Sorted[K cmp.Ordered, V any](seq iter.Seq2[K, V]) iter.Seq2[K, V] {
	dict := maps.Collect(seq)
	return func(yield func(K, V) bool) {
		for _, k := range slices.Sorted(maps.Keys(dict)) {
			if !yield(k, dict[k]) {
				return
			}
		}
	}
}
