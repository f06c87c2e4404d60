package app

import (
	"fmt"
	"strings"

	"github.com/raysh454/judolhunter/internal/model"
)

// Progress messages as shown to users. The wording is part of the product;
// keep it stable.
const (
	msgStart          = "🔍 Memulai scan untuk URL..."
	msgFetchCrawler   = "🤖 Mengambil halaman sebagai Googlebot..."
	msgFetchBrowser   = "🌐 Mengambil halaman sebagai Browser..."
	msgFetchFailed    = "✗ Gagal mengambil halaman"
	msgCloaking       = "🔬 Menganalisis cloaking..."
	msgCloakingFound  = "⚠ Cloaking terdeteksi! Similarity: %.1f%%"
	msgCloakingSkip   = "⚠ Analisis cloaking tidak dapat disimpulkan: salah satu halaman gagal diambil"
	msgKeywords       = "🎰 Memindai kata kunci judi..."
	msgKeywordsFound  = "⚠ Ditemukan %d kata kunci judi"
	msgLinks          = "🔗 Memeriksa link mencurigakan..."
	msgLinksFound     = "⚠ Ditemukan %d link mencurigakan"
	msgHidden         = "👁 Mendeteksi elemen tersembunyi..."
	msgHiddenFound    = "⚠ Ditemukan %d elemen spam tersembunyi"
	msgMeta           = "📋 Menganalisis meta tags..."
	msgMetaFound      = "⚠ Ditemukan %d meta tag terinfeksi"
	msgDiscovering    = "🕸 Mencari halaman tersembunyi..."
	msgDiscovered     = "🕸 Ditemukan %d halaman yang hanya terlihat oleh Googlebot"
	msgCrawlBudget    = "⏱ Batas waktu crawl tercapai, halaman baru tidak dipindai"
	msgCrawlPageLimit = "⏱ Batas jumlah halaman crawl tercapai"
	msgFinal          = "%s Scan selesai - Risiko: %s"
	msgDone           = "✓ Scan selesai"
	msgFailed         = "✗ Scan gagal: %s"
	msgQuotaDenied    = "✗ Kuota habis: %s"
	msgCancelled      = "dibatalkan"
)

func fetchResultMessage(label string, res *model.FetchResult) string {
	mark := "✗"
	if res.StatusCode == 200 {
		mark = "✓"
	}
	return fmt.Sprintf("%s %s: HTTP %d", mark, label, res.StatusCode)
}

// riskLabel is the Indonesian risk name used in the final status line.
func riskLabel(status model.ScanStatus, risk model.RiskLevel) string {
	if status == model.StatusError || status == model.StatusCancelled {
		return "TIDAK DIKETAHUI"
	}
	switch risk {
	case model.RiskCritical:
		return "KRITIS"
	case model.RiskHigh:
		return "TINGGI"
	case model.RiskMedium:
		return "SEDANG"
	default:
		return "RENDAH"
	}
}

// statusIcon marks the final line by verdict, not by risk: a suspicious
// page is yellow even when its risk is high.
func statusIcon(status model.ScanStatus) string {
	switch status {
	case model.StatusInfected:
		return "🔴"
	case model.StatusSuspicious:
		return "🟡"
	case model.StatusClean:
		return "🟢"
	default:
		return "⚫"
	}
}

func finalMessage(res *model.ScanResult) string {
	return fmt.Sprintf(msgFinal, statusIcon(res.Status), riskLabel(res.Status, res.RiskLevel))
}

func failedMessage(err string) string {
	return fmt.Sprintf(msgFailed, strings.TrimSpace(err))
}
