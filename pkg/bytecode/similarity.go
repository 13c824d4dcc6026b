package bytecode

// SequenceComparator 指令序列比较器。
// 嵌入相似度之外的结构化补充信号：对解码后的助记符序列
// 用最长公共子序列(LCS)计算Dice系数，范围0.0到1.0
type SequenceComparator struct {
	minSimilarity float64 // 最小相似度阈值，低于则归零
}

// NewSequenceComparator 创建比较器
func NewSequenceComparator() *SequenceComparator {
	return &SequenceComparator{minSimilarity: 0.0}
}

// NewSequenceComparatorWithThreshold 创建带阈值的比较器
func NewSequenceComparatorWithThreshold(minSimilarity float64) *SequenceComparator {
	return &SequenceComparator{minSimilarity: minSimilarity}
}

// Compare 比较两段字节码的指令序列相似度。
// 两个空序列视为无法比较返回0.0；Dice系数 = 2*LCS/(len1+len2)
func (c *SequenceComparator) Compare(codeA, codeB []byte) float64 {
	seqA := mnemonics(Decode(codeA))
	seqB := mnemonics(Decode(codeB))

	if len(seqA) == 0 && len(seqB) == 0 {
		return 0.0
	}
	if len(seqA) == 0 || len(seqB) == 0 {
		return 0.0
	}

	lcsLength := longestCommonSubsequence(seqA, seqB)
	similarity := (2.0 * float64(lcsLength)) / float64(len(seqA)+len(seqB))

	if c.minSimilarity > 0 && similarity < c.minSimilarity {
		return 0.0
	}
	return similarity
}

func mnemonics(instructions []Instruction) []string {
	names := make([]string, len(instructions))
	for i, inst := range instructions {
		names[i] = inst.Name
	}
	return names
}

// longestCommonSubsequence 动态规划求LCS长度，O(m*n)
func longestCommonSubsequence(seq1, seq2 []string) int {
	m, n := len(seq1), len(seq2)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if seq1[i-1] == seq2[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] > dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}
	return dp[m][n]
}
