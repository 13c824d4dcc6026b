// Package encoder 将原始字节码转换为评分模型的定长整数序列输入。
package encoder

import (
	"vulnscan/pkg/bytecode"
)

// PaddingToken 填充哨兵值。0–255为字节值，256保留给填充位，
// mask为true的位置绝不允许出现
const PaddingToken = 256

// EncodedSequence 定长整数序列 + 等长有效位掩码
type EncodedSequence struct {
	Tokens []int
	Mask   []bool
}

// ValidLength 有效（非填充）位置数
func (s *EncodedSequence) ValidLength() int {
	n := 0
	for _, m := range s.Mask {
		if m {
			n++
		}
	}
	return n
}

// Encode 编码hex字节码为定长序列。
// 短于maxLen右侧补PaddingToken且mask=false；长于maxLen右侧截断（保留前maxLen字节，
// 长合约的尾部会被静默丢弃，这是设计限制而非bug）。
// 任意长度都不报错；非法hex视为空输入，产出全填充、全false掩码。
func Encode(bytecodeHex string, maxLen int) *EncodedSequence {
	raw, err := bytecode.Parse(bytecodeHex)
	if err != nil {
		raw = nil
	}

	tokens := make([]int, maxLen)
	mask := make([]bool, maxLen)
	for i := 0; i < maxLen; i++ {
		if i < len(raw) {
			tokens[i] = int(raw[i])
			mask[i] = true
		} else {
			tokens[i] = PaddingToken
		}
	}
	return &EncodedSequence{Tokens: tokens, Mask: mask}
}
