// Package rvasm is a minimal RV32I assembler used to build test fixtures
// from readable mnemonic source instead of hand-packed hex words. It is
// not a general-purpose toolchain component: it supports the base integer
// instructions plus a .WORD data directive, and nothing else.
package rvasm

import (
	"fmt"
	"io"
	"math"
)

// WordOrError is one assembled 32-bit word, or the error that prevented
// assembling it.
type WordOrError struct {
	Word   uint32
	Err    error
	Lineno int
}

// StartAssembler runs the lex/parse/encode pipeline over r in a background
// goroutine and returns a channel of assembled words.
func StartAssembler(r io.Reader) <-chan WordOrError {
	out := make(chan WordOrError)
	go assembleAsync(r, out)
	return out
}

func assembleAsync(r io.Reader, out chan<- WordOrError) {
	defer close(out)
	var idx int64
	labels := make(map[string]int64)
	var statements []Statement
	for stmt := range StartParsing(StartLexing(r)) {
		if stmt.Err() != nil {
			out <- WordOrError{Err: stmt.Err(), Lineno: stmt.Line()}
			return
		}
		if stmt.Label() != nil {
			labels[*stmt.Label()] = idx * 4
		}
		statements = append(statements, stmt)
		idx++
	}
	for pc, stmt := range statements {
		if pc > math.MaxUint32 {
			out <- WordOrError{Err: fmt.Errorf("%w: program too long to assemble", ErrCannotEncode), Lineno: stmt.Line()}
			return
		}
		word, err := stmt.Encode(labels, uint32(pc*4))
		if err != nil {
			out <- WordOrError{Err: err, Lineno: stmt.Line()}
			continue
		}
		out <- WordOrError{Word: word, Lineno: stmt.Line()}
	}
}

// Assemble runs the pipeline to completion and returns the assembled
// words in program order, or the first error encountered.
func Assemble(r io.Reader) ([]uint32, error) {
	var words []uint32
	for woe := range StartAssembler(r) {
		if woe.Err != nil {
			return nil, fmt.Errorf("line %d: %w", woe.Lineno, woe.Err)
		}
		words = append(words, woe.Word)
	}
	return words, nil
}

// AssembleBytes is a convenience wrapper returning the assembled program
// as little-endian bytes, ready to Write into a memory.Memory.
func AssembleBytes(r io.Reader) ([]byte, error) {
	words, err := Assemble(r)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 4*len(words))
	for _, w := range words {
		out = append(out,
			byte(w), byte(w>>8), byte(w>>16), byte(w>>24),
		)
	}
	return out, nil
}
