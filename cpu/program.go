package cpu

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"
)

// BlockKey identifies a code block in a program.
type BlockKey struct {
	Kind   BlockKind
	Number int
}

func (key BlockKey) String() string {
	return fmt.Sprintf("%v %d", key.Kind, key.Number)
}

// DataBlockDef is the definition of a data block. Instance data blocks
// name their function block and may omit Data to use its defaults.
type DataBlockDef struct {
	Number int
	FB     int    // Owning FB number, 0 for a global DB.
	SFB    bool   // Owner is an SFB rather than an FB.
	Data   []byte // Initial contents.
}

// Program is a set of translated blocks.
type Program struct {
	Blocks     map[BlockKey]*Block
	DataBlocks map[int]*DataBlockDef
}

// NewProgram creates an empty program.
func NewProgram() (prog *Program) {
	prog = &Program{
		Blocks:     map[BlockKey]*Block{},
		DataBlocks: map[int]*DataBlockDef{},
	}
	return
}

// Add inserts a code block.
func (prog *Program) Add(blk *Block) (err error) {
	key := blk.Key()
	if _, found := prog.Blocks[key]; found {
		err = ErrBlockDuplicate(key.String())
		return
	}
	prog.Blocks[key] = blk
	return
}

// AddDataBlock inserts a data block definition.
func (prog *Program) AddDataBlock(def *DataBlockDef) (err error) {
	if _, found := prog.DataBlocks[def.Number]; found {
		err = ErrBlockDuplicate(fmt.Sprintf("DB %d", def.Number))
		return
	}
	prog.DataBlocks[def.Number] = def
	return
}

// Block looks up a code block.
func (prog *Program) Block(kind BlockKind, number int) (blk *Block, ok bool) {
	blk, ok = prog.Blocks[BlockKey{Kind: kind, Number: number}]
	return
}

// All iterates the code blocks ordered by kind and number.
func (prog *Program) All() iter.Seq2[BlockKey, *Block] {
	keys := slices.SortedFunc(maps.Keys(prog.Blocks), func(a, b BlockKey) int {
		return cmp.Or(cmp.Compare(a.Kind, b.Kind), cmp.Compare(a.Number, b.Number))
	})
	return func(yield func(BlockKey, *Block) bool) {
		for _, key := range keys {
			if !yield(key, prog.Blocks[key]) {
				return
			}
		}
	}
}
