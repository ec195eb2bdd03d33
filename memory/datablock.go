package memory

import (
	"fmt"
	"iter"
	"maps"
	"slices"
)

// DataBlock is a numbered data block. Instance data blocks record the
// number of the function block they belong to.
type DataBlock struct {
	*Area
	Number   int  // DB number.
	Instance int  // Owning FB number, 0 for a global DB.
	initial  []byte
}

// NewDataBlock creates a data block with the given initial contents. The
// block is returned to these contents by Reset.
func NewDataBlock(number int, data []byte) (db *DataBlock) {
	db = &DataBlock{
		Area:    &Area{Name: fmt.Sprintf("DB%d", number), Data: slices.Clone(data)},
		Number:  number,
		initial: slices.Clone(data),
	}
	return
}

// Reset restores the initial contents.
func (db *DataBlock) Reset() {
	db.Data = slices.Clone(db.initial)
}

// DataBlocks is the set of loaded data blocks.
type DataBlocks map[int]*DataBlock

// Get returns the data block with the number, if present.
func (dbs DataBlocks) Get(number int) (db *DataBlock, ok bool) {
	db, ok = dbs[number]
	return
}

// Add inserts or replaces a data block.
func (dbs DataBlocks) Add(db *DataBlock) {
	dbs[db.Number] = db
}

// Reset restores every block to its initial contents.
func (dbs DataBlocks) Reset() {
	for _, db := range dbs {
		db.Reset()
	}
}

// All iterates the blocks in ascending number order.
func (dbs DataBlocks) All() iter.Seq2[int, *DataBlock] {
	return func(yield func(int, *DataBlock) bool) {
		for _, number := range slices.Sorted(maps.Keys(dbs)) {
			if !yield(number, dbs[number]) {
				return
			}
		}
	}
}
