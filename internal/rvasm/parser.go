package rvasm

import (
	"fmt"
	"strings"

	"github.com/rv32lab/rv32sim/pkg/inst"
)

// funct7Zero and funct7Alt are local aliases of pkg/inst's exported
// Funct7Zero and Funct7Alt constants.
const (
	funct7Zero = inst.Funct7Zero
	funct7Alt  = inst.Funct7Alt
)

// Load/store funct3 encodings; pkg/inst has no named constants for these
// since the execution unit derives width directly from funct3&0x3.
const (
	funct3LB  = uint32(0b000)
	funct3LH  = uint32(0b001)
	funct3LW  = uint32(0b010)
	funct3LBU = uint32(0b100)
	funct3LHU = uint32(0b101)
	funct3SB  = uint32(0b000)
	funct3SH  = uint32(0b001)
	funct3SW  = uint32(0b010)
)

// StartParsing consumes lexed lines and streams parsed Statements. The
// goroutine closes the output channel once the input channel is
// exhausted; a malformed line yields a single errStatement rather than
// aborting the stream (the assembler stops at the first one it receives).
func StartParsing(lines <-chan rawLine) <-chan Statement {
	out := make(chan Statement)
	go parseAsync(lines, out)
	return out
}

// parseAsync attaches a label that stands on a line of its own to the
// statement on the next line, so the label names that statement's address.
// A label-only line followed by another labelled line, or by the end of
// the input, assembles as a zero word.
func parseAsync(lines <-chan rawLine, out chan<- Statement) {
	defer close(out)
	var pending *rawLine
	for line := range lines {
		if pending != nil && !strings.Contains(line.Text, ":") {
			line.Text = pending.Text + " " + line.Text
		} else if pending != nil {
			out <- parseLine(*pending)
		}
		pending = nil
		if strings.HasSuffix(line.Text, ":") {
			held := line
			pending = &held
			continue
		}
		out <- parseLine(line)
	}
	if pending != nil {
		out <- parseLine(*pending)
	}
}

func parseLine(line rawLine) Statement {
	text := line.Text
	var label *string
	if idx := strings.IndexByte(text, ':'); idx >= 0 {
		name := strings.TrimSpace(text[:idx])
		label = &name
		text = strings.TrimSpace(text[idx+1:])
		if text == "" {
			return &wordStatement{lineno: line.Lineno, label: label, value: 0}
		}
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(fields) == 0 {
		return errStatement{lineno: line.Lineno, err: fmt.Errorf("%w: empty statement", ErrBadOperands)}
	}
	mnemonic := strings.ToUpper(fields[0])
	ops := fields[1:]

	stmt, err := buildStatement(line.Lineno, label, mnemonic, ops)
	if err != nil {
		return errStatement{lineno: line.Lineno, err: err}
	}
	return stmt
}

func buildStatement(lineno int, label *string, mnemonic string, ops []string) (Statement, error) {
	reg := func(i int) (uint32, error) {
		if i >= len(ops) {
			return 0, fmt.Errorf("%w: %s expects an operand at position %d on line %d", ErrBadOperands, mnemonic, i, lineno)
		}
		return parseRegister(ops[i])
	}
	imm := func(i int) (string, error) {
		if i >= len(ops) {
			return "", fmt.Errorf("%w: %s expects an operand at position %d on line %d", ErrBadOperands, mnemonic, i, lineno)
		}
		return ops[i], nil
	}

	switch mnemonic {
	case ".WORD", ".FILL":
		v, err := imm(0)
		if err != nil {
			return nil, err
		}
		n, err := resolveImmediate(nil, v, lineno)
		if err != nil {
			return nil, err
		}
		return &wordStatement{lineno: lineno, label: label, value: uint32(n)}, nil

	case "ADDI", "SLTI", "SLTIU", "XORI", "ORI", "ANDI":
		rd, err := reg(0)
		if err != nil {
			return nil, err
		}
		rs1, err := reg(1)
		if err != nil {
			return nil, err
		}
		v, err := imm(2)
		if err != nil {
			return nil, err
		}
		f3 := map[string]uint32{
			"ADDI": inst.Funct3ADDI, "SLTI": inst.Funct3SLTI, "SLTIU": inst.Funct3SLTIU,
			"XORI": inst.Funct3XORI, "ORI": inst.Funct3ORI, "ANDI": inst.Funct3ANDI,
		}[mnemonic]
		return &iStatement{lineno: lineno, label: label, op: inst.OpImm, funct3: f3, rd: rd, rs1: rs1, imm: v}, nil

	case "SLLI", "SRLI", "SRAI":
		rd, err := reg(0)
		if err != nil {
			return nil, err
		}
		rs1, err := reg(1)
		if err != nil {
			return nil, err
		}
		v, err := imm(2)
		if err != nil {
			return nil, err
		}
		f3 := inst.Funct3SLLI
		f7 := funct7Zero
		if mnemonic != "SLLI" {
			f3 = inst.Funct3SRxI
			if mnemonic == "SRAI" {
				f7 = funct7Alt
			}
		}
		return &iStatement{lineno: lineno, label: label, op: inst.OpImm, funct3: f3, rd: rd, rs1: rs1, imm: v, shiftFunct7: &f7}, nil

	case "ADD", "SUB", "SLL", "SLT", "SLTU", "XOR", "SRL", "SRA", "OR", "AND":
		rd, err := reg(0)
		if err != nil {
			return nil, err
		}
		rs1, err := reg(1)
		if err != nil {
			return nil, err
		}
		rs2, err := reg(2)
		if err != nil {
			return nil, err
		}
		f3 := map[string]uint32{
			"ADD": inst.Funct3ADDSUB, "SUB": inst.Funct3ADDSUB, "SLL": inst.Funct3SLL,
			"SLT": inst.Funct3SLT, "SLTU": inst.Funct3SLTU, "XOR": inst.Funct3XOR,
			"SRL": inst.Funct3SRx, "SRA": inst.Funct3SRx, "OR": inst.Funct3OR, "AND": inst.Funct3AND,
		}[mnemonic]
		f7 := funct7Zero
		if mnemonic == "SUB" || mnemonic == "SRA" {
			f7 = funct7Alt
		}
		return &rStatement{lineno: lineno, label: label, op: inst.OpOp, funct3: f3, funct7: f7, rd: rd, rs1: rs1, rs2: rs2}, nil

	case "LUI", "AUIPC":
		rd, err := reg(0)
		if err != nil {
			return nil, err
		}
		v, err := imm(1)
		if err != nil {
			return nil, err
		}
		op := inst.OpLUI
		if mnemonic == "AUIPC" {
			op = inst.OpAUIPC
		}
		return &uStatement{lineno: lineno, label: label, op: op, rd: rd, imm: v}, nil

	case "JAL":
		rd, err := reg(0)
		if err != nil {
			return nil, err
		}
		v, err := imm(1)
		if err != nil {
			return nil, err
		}
		return &jStatement{lineno: lineno, label: label, rd: rd, target: v}, nil

	case "JALR":
		rd, err := reg(0)
		if err != nil {
			return nil, err
		}
		rs1, err := reg(1)
		if err != nil {
			return nil, err
		}
		v, err := imm(2)
		if err != nil {
			return nil, err
		}
		return &iStatement{lineno: lineno, label: label, op: inst.OpJALR, funct3: 0, rd: rd, rs1: rs1, imm: v}, nil

	case "BEQ", "BNE", "BLT", "BGE", "BLTU", "BGEU":
		rs1, err := reg(0)
		if err != nil {
			return nil, err
		}
		rs2, err := reg(1)
		if err != nil {
			return nil, err
		}
		v, err := imm(2)
		if err != nil {
			return nil, err
		}
		f3 := map[string]uint32{
			"BEQ": inst.Funct3BEQ, "BNE": inst.Funct3BNE, "BLT": inst.Funct3BLT,
			"BGE": inst.Funct3BGE, "BLTU": inst.Funct3BLTU, "BGEU": inst.Funct3BGEU,
		}[mnemonic]
		return &bStatement{lineno: lineno, label: label, funct3: f3, rs1: rs1, rs2: rs2, target: v}, nil

	case "LB", "LH", "LW", "LBU", "LHU":
		rd, err := reg(0)
		if err != nil {
			return nil, err
		}
		offset, base, err := parseMemOperand(ops, 1, lineno)
		if err != nil {
			return nil, err
		}
		rs1, err := parseRegister(base)
		if err != nil {
			return nil, err
		}
		f3 := map[string]uint32{
			"LB": funct3LB, "LH": funct3LH, "LW": funct3LW, "LBU": funct3LBU, "LHU": funct3LHU,
		}[mnemonic]
		return &iStatement{lineno: lineno, label: label, op: inst.OpLoad, funct3: f3, rd: rd, rs1: rs1, imm: offset}, nil

	case "SB", "SH", "SW":
		rs2, err := reg(0)
		if err != nil {
			return nil, err
		}
		offset, base, err := parseMemOperand(ops, 1, lineno)
		if err != nil {
			return nil, err
		}
		rs1, err := parseRegister(base)
		if err != nil {
			return nil, err
		}
		f3 := map[string]uint32{"SB": funct3SB, "SH": funct3SH, "SW": funct3SW}[mnemonic]
		return &sStatement{lineno: lineno, label: label, funct3: f3, rs1: rs1, rs2: rs2, imm: offset}, nil

	case "ECALL":
		return &systemStatement{lineno: lineno, label: label, imm: 0}, nil
	case "EBREAK":
		return &systemStatement{lineno: lineno, label: label, imm: 1}, nil
	case "FENCE":
		return &iStatement{lineno: lineno, label: label, op: inst.OpMiscMem, funct3: 0, rd: 0, rs1: 0, imm: "0"}, nil
	case "NOP":
		return &iStatement{lineno: lineno, label: label, op: inst.OpImm, funct3: inst.Funct3ADDI, rd: 0, rs1: 0, imm: "0"}, nil
	}

	return nil, fmt.Errorf("%w: %q on line %d", ErrUnknownMnemonic, mnemonic, lineno)
}

// parseMemOperand splits a load/store memory operand of the form
// "imm(reg)" starting at ops[from], returning the immediate text and the
// base register name.
func parseMemOperand(ops []string, from, lineno int) (offset, base string, err error) {
	if from >= len(ops) {
		return "", "", fmt.Errorf("%w: missing memory operand on line %d", ErrBadOperands, lineno)
	}
	operand := ops[from]
	open := strings.IndexByte(operand, '(')
	shut := strings.IndexByte(operand, ')')
	if open < 0 || shut < open {
		return "", "", fmt.Errorf("%w: expected imm(reg) on line %d, got %q", ErrBadOperands, lineno, operand)
	}
	offset = operand[:open]
	if offset == "" {
		offset = "0"
	}
	base = operand[open+1 : shut]
	return offset, base, nil
}
