package bytecode

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// InvalidBytecodeError 非法hex输入（解码边界处唯一的错误类型）
type InvalidBytecodeError struct {
	Reason string
}

func (e *InvalidBytecodeError) Error() string {
	return fmt.Sprintf("invalid bytecode hex: %s", e.Reason)
}

// Instruction 解码后的单条指令
type Instruction struct {
	Offset  int    // 在字节码中的字节偏移
	Op      byte   // 原始操作码
	Name    string // 规范助记符
	Operand []byte // PUSH族的立即数（可能因尾部截断而短于声明长度）
}

// Normalize 统一hex形式：去掉0x前缀并转小写
func Normalize(bytecodeHex string) string {
	s := strings.ToLower(strings.TrimSpace(bytecodeHex))
	if strings.HasPrefix(s, "0x") {
		s = s[2:]
	}
	return s
}

// Parse 校验并解析hex字符串为字节序列
func Parse(bytecodeHex string) ([]byte, error) {
	normalized := Normalize(bytecodeHex)
	raw, err := hex.DecodeString(normalized)
	if err != nil {
		return nil, &InvalidBytecodeError{Reason: err.Error()}
	}
	return raw, nil
}

// Decode 单遍左到右解码任意字节序列，永不失败
//
// 核心不变量：PUSHn 的 n 个立即数字节必须被游标跳过而不是当作指令解码，
// 否则后续全部错位。尾部截断的PUSH按剩余字节消费后终止，
// 畸形/混淆字节码中这种情况很常见，不能让整次解码失败。
func Decode(code []byte) []Instruction {
	instructions := make([]Instruction, 0, len(code))
	i := 0
	for i < len(code) {
		op := code[i]
		inst := Instruction{Offset: i, Op: op}

		switch {
		case op >= 0x60 && op <= 0x7f:
			// PUSH1..PUSH32
			size := int(op) - 0x5f
			inst.Name = fmt.Sprintf("PUSH%d", size)
			end := i + 1 + size
			if end > len(code) {
				end = len(code)
			}
			inst.Operand = code[i+1 : end]
			i = end
		case op >= 0x80 && op <= 0x8f:
			inst.Name = fmt.Sprintf("DUP%d", int(op)-0x7f)
			i++
		case op >= 0x90 && op <= 0x9f:
			inst.Name = fmt.Sprintf("SWAP%d", int(op)-0x8f)
			i++
		default:
			if name, ok := opcodeNames[op]; ok {
				inst.Name = name
			} else {
				inst.Name = fmt.Sprintf("UNKNOWN_0x%x", op)
			}
			i++
		}

		instructions = append(instructions, inst)
	}
	return instructions
}

// ConsumedBytes 指令消费的总字节数（操作码 + 实际立即数）
func (in Instruction) ConsumedBytes() int {
	return 1 + len(in.Operand)
}
