package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vulnscan/pkg/vuln"
)

// TestEncodeSample 样本编码契约
func TestEncodeSample(t *testing.T) {
	t.Run("LabelMapping", func(t *testing.T) {
		risk := 75.0
		sample := ContractSample{
			ContractID:  "0xabc",
			Bytecode:    "0x6080604052",
			IsMalicious: true,
			RiskScore:   &risk,
			Labels: []VulnerabilityLabel{
				{VulnType: "reentrancy"},
				{VulnType: "honeypot"},
			},
		}

		encoded := Encode(sample, 16)

		require.Len(t, encoded.Targets.Vulnerabilities, vuln.NumCategories)
		assert.Equal(t, 1.0, encoded.Targets.Vulnerabilities[vuln.Index(vuln.Reentrancy)])
		assert.Equal(t, 1.0, encoded.Targets.Vulnerabilities[vuln.Index(vuln.Honeypot)])
		assert.Equal(t, 0.0, encoded.Targets.Vulnerabilities[vuln.Index(vuln.TxOrigin)])

		assert.Equal(t, 1.0, encoded.Targets.Malicious)
		assert.Equal(t, 0.75, encoded.Targets.Risk, "risk score normalized to [0,1]")
		assert.Equal(t, 5, encoded.Sequence.ValidLength())
	})

	t.Run("UnknownLabelIgnored", func(t *testing.T) {
		sample := ContractSample{
			Bytecode: "00",
			Labels: []VulnerabilityLabel{
				{VulnType: "reentrancy"},
				{VulnType: "quantum_exploit"}, // 不在类别表中，静默忽略
			},
		}
		encoded := Encode(sample, 8)

		total := 0.0
		for _, v := range encoded.Targets.Vulnerabilities {
			total += v
		}
		assert.Equal(t, 1.0, total, "only known categories are encoded")
	})

	t.Run("Defaults", func(t *testing.T) {
		encoded := Encode(ContractSample{Bytecode: "00"}, 8)
		assert.Equal(t, 0.0, encoded.Targets.Malicious)
		assert.Equal(t, 0.0, encoded.Targets.Risk, "missing risk score defaults to 0")
	})
}
