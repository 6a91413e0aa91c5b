package service

import (
	"github.com/and161185/mobicure/internal/generator"
	"github.com/and161185/mobicure/internal/scoring"
	"github.com/and161185/mobicure/internal/tools"
)

// ToolsService bundles the stateless utilities. They need no session.
type ToolsService struct {
	gen *generator.Generator
}

// NewToolsService constructs ToolsService over gen; nil selects the crypto-backed generator.
func NewToolsService(gen *generator.Generator) *ToolsService {
	if gen == nil {
		gen = generator.New(nil)
	}
	return &ToolsService{gen: gen}
}

func (s *ToolsService) ScorePassword(pw string) scoring.Strength { return scoring.ScorePasswordStrength(pw) }

func (s *ToolsService) ScoreRisk(f scoring.RiskFactors) scoring.Risk { return scoring.ScorePrivacyRisk(f) }

// GeneratePassword uses the default length when length is zero.
func (s *ToolsService) GeneratePassword(length int, symbols, numbers bool) (string, error) {
	if length == 0 {
		length = generator.DefaultPasswordLength
	}
	return s.gen.GeneratePassword(length, symbols, numbers)
}

func (s *ToolsService) FakeIdentity() generator.Identity { return s.gen.GenerateFakeIdentity() }

func (s *ToolsService) MaskedEmail() string { return s.gen.GenerateMaskedEmail() }

func (s *ToolsService) CheckBreaches(email string) []generator.Breach {
	return s.gen.CheckBreaches(email)
}

func (s *ToolsService) FormatJSON(in string) (string, error) { return tools.FormatJSON(in) }

func (s *ToolsService) QRCode(text string, size int) (string, error) {
	return tools.QRCodeURL(text, size)
}
