package model

import (
	"encoding/gob"
	"fmt"
	"math/rand"
	"os"
)

// LinearParams 单层仿射参数
type LinearParams struct {
	W Matrix
	B Vector
}

// NormParams LayerNorm参数
type NormParams struct {
	Gamma Vector
	Beta  Vector
}

// BlockParams 单个自注意力编码器块的全部权重
type BlockParams struct {
	// 自注意力投影 (E x E)
	Query  LinearParams
	Key    LinearParams
	Value  LinearParams
	Output LinearParams

	Norm1 NormParams

	// 前馈 (F x E) 和 (E x F)
	FF1 LinearParams
	FF2 LinearParams

	Norm2 NormParams
}

// HeadParams 任务头：两层投影中间夹GELU
type HeadParams struct {
	L1 LinearParams
	L2 LinearParams
}

// Parameters 评分模型全部学习参数。推理期只读，
// 训练流程拥有独占的写权限（快照边界在集成层）
type Parameters struct {
	// 字节嵌入：256个字节值 + 1个填充token，填充行恒为零
	ByteEmbed Matrix
	// 位置嵌入 (MaxSeqLen x E)
	PosEmbed  Matrix
	EmbedNorm NormParams

	Blocks []BlockParams

	// 共享特征投影 E -> H -> H
	FeatureProj HeadParams

	// 任务头 H -> H/2 -> 输出
	MaliciousHead HeadParams
	VulnHead      HeadParams
	RiskHead      HeadParams
}

func newLinear(rows, cols int, rng *rand.Rand) LinearParams {
	return LinearParams{W: NewMatrix(rows, cols, rng), B: NewVector(rows)}
}

func newNorm(dim int) NormParams {
	return NormParams{Gamma: OnesVector(dim), Beta: NewVector(dim)}
}

func newHead(in, mid, out int, rng *rand.Rand) HeadParams {
	return HeadParams{
		L1: newLinear(mid, in, rng),
		L2: newLinear(out, mid, rng),
	}
}

// NewParameters 按配置随机初始化全套参数（固定seed可复现）
func NewParameters(cfg Config, seed int64) *Parameters {
	rng := rand.New(rand.NewSource(seed))
	e := cfg.EmbeddingDim
	h := cfg.HiddenDim
	k := cfg.NumVulnTypes

	p := &Parameters{
		ByteEmbed: NewMatrix(257, e, rng),
		PosEmbed:  NewMatrix(cfg.MaxSeqLen, e, rng),
		EmbedNorm: newNorm(e),
		Blocks:    make([]BlockParams, cfg.NumLayers),

		FeatureProj:   newHead(e, h, h, rng),
		MaliciousHead: newHead(h, h/2, 1, rng),
		VulnHead:      newHead(h, h/2, k, rng),
		RiskHead:      newHead(h, h/2, 1, rng),
	}

	// 填充token的嵌入行置零
	p.ByteEmbed[256] = NewVector(e)

	for i := range p.Blocks {
		p.Blocks[i] = BlockParams{
			Query:  newLinear(e, e, rng),
			Key:    newLinear(e, e, rng),
			Value:  newLinear(e, e, rng),
			Output: newLinear(e, e, rng),
			Norm1:  newNorm(e),
			FF1:    newLinear(h, e, rng),
			FF2:    newLinear(e, h, rng),
			Norm2:  newNorm(e),
		}
	}
	return p
}

// Validate 校验参数形状与配置一致。形状不匹配属于致命配置错误，
// 必须在加载时中止而不是留到请求期
func (p *Parameters) Validate(cfg Config) error {
	e := cfg.EmbeddingDim
	if len(p.ByteEmbed) != 257 || len(p.ByteEmbed[0]) != e {
		return fmt.Errorf("byte embedding shape %dx%d, want 257x%d",
			len(p.ByteEmbed), len(p.ByteEmbed[0]), e)
	}
	if len(p.PosEmbed) != cfg.MaxSeqLen || len(p.PosEmbed[0]) != e {
		return fmt.Errorf("position embedding shape %dx%d, want %dx%d",
			len(p.PosEmbed), len(p.PosEmbed[0]), cfg.MaxSeqLen, e)
	}
	if len(p.Blocks) != cfg.NumLayers {
		return fmt.Errorf("encoder has %d blocks, want %d", len(p.Blocks), cfg.NumLayers)
	}
	for i, blk := range p.Blocks {
		if len(blk.Query.W) != e || len(blk.Query.W[0]) != e {
			return fmt.Errorf("block %d query shape %dx%d, want %dx%d",
				i, len(blk.Query.W), len(blk.Query.W[0]), e, e)
		}
		if len(blk.FF1.W) != cfg.HiddenDim || len(blk.FF1.W[0]) != e {
			return fmt.Errorf("block %d feed-forward shape %dx%d, want %dx%d",
				i, len(blk.FF1.W), len(blk.FF1.W[0]), cfg.HiddenDim, e)
		}
	}
	if len(p.VulnHead.L2.W) != cfg.NumVulnTypes {
		return fmt.Errorf("vulnerability head outputs %d classes, want %d",
			len(p.VulnHead.L2.W), cfg.NumVulnTypes)
	}
	return nil
}

// Save 将参数快照写入文件（gob编码）
func (p *Parameters) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// LoadParameters 从快照文件加载参数并校验形状
func LoadParameters(path string, cfg Config) (*Parameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	p := &Parameters{}
	if err := gob.NewDecoder(f).Decode(p); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := p.Validate(cfg); err != nil {
		return nil, fmt.Errorf("snapshot incompatible with config: %w", err)
	}
	return p, nil
}
