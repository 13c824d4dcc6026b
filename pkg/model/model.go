package model

import (
	"math"

	"vulnscan/pkg/encoder"
)

// Output 评分函数的四路原始输出。
// 对任意格式正确的输入序列，前向计算是全函数，没有错误路径：
// 畸形输入由上游编码器兜底，参数形状问题在加载时已被拦截
type Output struct {
	Malicious       float64 // 恶意概率 [0,1]
	Vulnerabilities Vector  // 每类漏洞独立概率（多标签，不跨类归一化）
	Risk            float64 // 风险值 [0,1]，解释器再放大到0-100
	Features        Vector  // 嵌入向量，用于相似度比较
}

// Model 字节码漏洞评分模型。
// 结构：字节+位置嵌入 → L层自注意力编码器 → 掩码池化 → 共享特征投影 → 三个任务头。
// 学习参数在推理期只读，可被多个调用方并发共享
type Model struct {
	cfg    Config
	params *Parameters
}

// New 组装模型
func New(cfg Config, params *Parameters) *Model {
	return &Model{cfg: cfg, params: params}
}

// Config 返回模型结构配置
func (m *Model) Config() Config {
	return m.cfg
}

// executor 遍历策略：参考实现串行，优化实现按worker并行
type executor func(n int, fn func(i int))

func serialFor(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		fn(i)
	}
}

// embed 逐位置计算 字节嵌入+位置嵌入 后做LayerNorm。
// dropout在推理下直通，不引入随机性
func (m *Model) embed(tokens []int, run executor) []Vector {
	p := m.params
	x := make([]Vector, len(tokens))
	run(len(tokens), func(i int) {
		tok := tokens[i]
		if tok < 0 || tok > encoder.PaddingToken {
			tok = encoder.PaddingToken
		}
		x[i] = LayerNorm(AddVec(p.ByteEmbed[tok], p.PosEmbed[i]), p.EmbedNorm.Gamma, p.EmbedNorm.Beta)
	})
	return x
}

// selfAttention 多头自注意力。mask为false的位置作为key被加性屏蔽，
// 不允许向有效位置贡献注意力权重；mask为nil时所有位置有效
func (m *Model) selfAttention(blk *BlockParams, x []Vector, mask []bool, run executor) []Vector {
	seqLen := len(x)
	numHeads := m.cfg.NumHeads
	headDim := m.cfg.HeadDim()
	scale := 1.0 / math.Sqrt(float64(headDim))

	q := make([]Vector, seqLen)
	k := make([]Vector, seqLen)
	v := make([]Vector, seqLen)
	run(seqLen, func(i int) {
		q[i] = Linear(blk.Query.W, blk.Query.B, x[i])
		k[i] = Linear(blk.Key.W, blk.Key.B, x[i])
		v[i] = Linear(blk.Value.W, blk.Value.B, x[i])
	})

	out := make([]Vector, seqLen)
	run(seqLen, func(i int) {
		ctx := make(Vector, m.cfg.EmbeddingDim)
		for h := 0; h < numHeads; h++ {
			base := h * headDim

			scores := make(Vector, seqLen)
			anyValid := false
			for j := 0; j < seqLen; j++ {
				if mask != nil && !mask[j] {
					scores[j] = math.Inf(-1)
					continue
				}
				anyValid = true
				dot := 0.0
				for d := 0; d < headDim; d++ {
					dot += q[i][base+d] * k[j][base+d]
				}
				scores[j] = dot * scale
			}
			// 全填充序列：没有可用的key，上下文退化为零向量而不是NaN
			if !anyValid {
				continue
			}

			weights := Softmax(scores)
			for j := 0; j < seqLen; j++ {
				w := weights[j]
				if w == 0 {
					continue
				}
				for d := 0; d < headDim; d++ {
					ctx[base+d] += w * v[j][base+d]
				}
			}
		}
		out[i] = Linear(blk.Output.W, blk.Output.B, ctx)
	})
	return out
}

// encodeBlocks 堆叠的编码器块，残差 + 后置LayerNorm，前馈用GELU
func (m *Model) encodeBlocks(x []Vector, mask []bool, run executor) []Vector {
	for b := range m.params.Blocks {
		blk := &m.params.Blocks[b]

		attn := m.selfAttention(blk, x, mask, run)
		next := make([]Vector, len(x))
		run(len(x), func(i int) {
			h := LayerNorm(AddVec(x[i], attn[i]), blk.Norm1.Gamma, blk.Norm1.Beta)
			ff := Linear(blk.FF2.W, blk.FF2.B, GELU(Linear(blk.FF1.W, blk.FF1.B, h)))
			next[i] = LayerNorm(AddVec(h, ff), blk.Norm2.Gamma, blk.Norm2.Beta)
		})
		x = next
	}
	return x
}

// maskedMeanPool 有效位置的均值池化: sum(x*mask) / max(sum(mask),1)。
// 分母下限1保证全填充输入不会除零，池化结果退化为零向量
func maskedMeanPool(x []Vector, mask []bool, dim int) Vector {
	pooled := make(Vector, dim)
	count := 0
	for i := range x {
		if !mask[i] {
			continue
		}
		count++
		for d := 0; d < dim; d++ {
			pooled[d] += x[i][d]
		}
	}
	denom := float64(count)
	if denom < 1 {
		denom = 1
	}
	for d := range pooled {
		pooled[d] /= denom
	}
	return pooled
}

// meanPool 不带掩码的普通均值池化（纯嵌入提取路径专用，
// 与掩码路径是刻意区分的两种算术，不可静默合并）
func meanPool(x []Vector, dim int) Vector {
	pooled := make(Vector, dim)
	if len(x) == 0 {
		return pooled
	}
	for i := range x {
		for d := 0; d < dim; d++ {
			pooled[d] += x[i][d]
		}
	}
	for d := range pooled {
		pooled[d] /= float64(len(x))
	}
	return pooled
}

// applyHead 两层投影，中间GELU
func applyHead(hp *HeadParams, x Vector) Vector {
	return Linear(hp.L2.W, hp.L2.B, GELU(Linear(hp.L1.W, hp.L1.B, x)))
}

// forward 完整前向：掩码注意力 + 掩码均值池化 + 三个任务头
func (m *Model) forward(tokens []int, mask []bool, run executor) *Output {
	x := m.embed(tokens, run)
	x = m.encodeBlocks(x, mask, run)

	pooled := maskedMeanPool(x, mask, m.cfg.EmbeddingDim)
	features := applyHead(&m.params.FeatureProj, pooled)

	return &Output{
		Malicious:       Sigmoid(applyHead(&m.params.MaliciousHead, features)[0]),
		Vulnerabilities: SigmoidVec(applyHead(&m.params.VulnHead, features)),
		Risk:            Sigmoid(applyHead(&m.params.RiskHead, features)[0]),
		Features:        features,
	}
}

// embedOnly 纯嵌入提取：注意力不加掩码，普通均值池化。
// 对填充位置的语义只有近似的忽略效果，与掩码路径算术不同
func (m *Model) embedOnly(tokens []int, run executor) Vector {
	x := m.embed(tokens, run)
	x = m.encodeBlocks(x, nil, run)
	pooled := meanPool(x, m.cfg.EmbeddingDim)
	return applyHead(&m.params.FeatureProj, pooled)
}
