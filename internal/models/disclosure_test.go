package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/idxwatch/internal/models"
)

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name      string
		stockCode string
		date      string
		title     string
		want      string
	}{
		{
			name:      "short title kept whole",
			stockCode: "BBCA",
			date:      "2026-08-25",
			title:     "Dividen Tunai",
			want:      "BBCA_2026-08-25_DividenTunai",
		},
		{
			name:      "long title truncated to prefix",
			stockCode: "TLKM",
			date:      "2026-08-25",
			title:     "Laporan Keuangan Interim Per 30 Juni 2026",
			want:      "TLKM_2026-08-25_LaporanKeuanganInt",
		},
		{
			name:      "unsafe characters stripped",
			stockCode: "ASII",
			date:      "25/08/2026",
			title:     "RUPS (Tahunan) 2026!",
			want:      "ASII_25082026_RUPSTahunan2026",
		},
		{
			name:      "empty fields still produce a key",
			stockCode: "",
			date:      "",
			title:     "",
			want:      "__",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.IdentityKey(tt.stockCode, tt.date, tt.title))
		})
	}
}

func TestIdentityKeyStableForSameInput(t *testing.T) {
	a := models.IdentityKey("BBRI", "2026-08-25", "Keterbukaan Informasi")
	b := models.IdentityKey("BBRI", "2026-08-25", "Keterbukaan Informasi")
	assert.Equal(t, a, b)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Penyampaian Laporan Keuangan Interim", models.CategoryFinancialReport},
		{"Quarterly Financial Statement Q2", models.CategoryFinancialReport},
		{"Jadwal Pembagian Dividen Tunai", models.CategoryCorporateAction},
		{"Pemanggilan RUPS Tahunan", models.CategoryCorporateAction},
		{"Penawaran Umum Terbatas I", models.CategoryRightsIssue},
		{"Rights Issue Schedule", models.CategoryRightsIssue},
		{"Keterbukaan Informasi Yang Perlu Diketahui Publik", models.CategoryMaterialInformation},
		{"Rencana Akuisisi Anak Usaha", models.CategoryAcquisition},
		{"Penggabungan Usaha dengan PT X", models.CategoryAcquisition},
		{"Perubahan Susunan Pengurus", models.CategoryOther},
		{"", models.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, models.Categorize(tt.title))
		})
	}
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	// Title matches both financial-report and corporate-action keywords;
	// the earlier category is chosen.
	got := models.Categorize("Laporan Keuangan dan Jadwal Dividen")
	assert.Equal(t, models.CategoryFinancialReport, got)
}
