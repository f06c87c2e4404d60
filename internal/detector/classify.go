package detector

import "github.com/raysh454/judolhunter/internal/model"

// Classify derives status and risk level from the findings. The rules are
// evaluated in order and the first match wins:
//
//  1. cloaking and keywords detected: infected, critical
//  2. cloaking detected or at least three distinct keywords: suspicious, high
//  3. keywords, links, hidden elements or meta injection detected: suspicious, medium
//  4. otherwise: clean, low
func Classify(f model.Findings) (model.ScanStatus, model.RiskLevel) {
	cloaking := f.Cloaking.IsDetected()
	keywords := f.Keywords.IsDetected()

	switch {
	case cloaking && keywords:
		return model.StatusInfected, model.RiskCritical
	case cloaking || f.KeywordEvidenceCount() >= HighRiskKeywordCount:
		return model.StatusSuspicious, model.RiskHigh
	case keywords || f.Links.IsDetected() || f.Hidden.IsDetected() || f.Meta.IsDetected():
		return model.StatusSuspicious, model.RiskMedium
	default:
		return model.StatusClean, model.RiskLow
	}
}
