package telegram

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/idxwatch/internal/models"
)

// FormatDisclosure renders the push-notification message for one disclosure.
func FormatDisclosure(d models.Disclosure) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*%s*\n\n", d.Title)
	fmt.Fprintf(&b, "📊 *Saham*\n%s\n\n", d.StockCode)
	fmt.Fprintf(&b, "🏷 *Kategori*\n%s\n\n", d.Category)
	fmt.Fprintf(&b, "📅 *Tanggal*\n%s\n", d.Date)

	if d.PDFLink != "" {
		fmt.Fprintf(&b, "\n🔗 *Dokumen*\n[Lihat Dokumen](%s)\n", d.PDFLink)
	}

	return b.String()
}

const welcomeMessage = `🔔 *IDX Disclosure Bot*

Selamat datang! Bot ini memberitahu Anda tentang *semua* keterbukaan informasi terbaru dari Bursa Efek Indonesia.

✅ Anda sekarang *berlangganan* notifikasi.

*Perintah yang tersedia:*
/latest - Tampilkan disclosure terakhir
/stop - Berhenti berlangganan
/start - Aktifkan kembali notifikasi
/stats - Statistik bot
/help - Bantuan`

const stoppedMessage = `❌ Anda telah berhenti berlangganan.

Gunakan /start untuk berlangganan kembali.`

const helpMessage = `📖 *Bantuan IDX Disclosure Bot*

*Perintah:*
/start - Berlangganan notifikasi
/stop - Berhenti berlangganan
/latest - Lihat disclosure terakhir
/stats - Statistik bot
/help - Bantuan ini

*Kategori Disclosure:*
• Financial Report - Laporan keuangan
• Corporate Action - RUPS, dividen, stock split
• Rights Issue - HMETD
• Material Information - Informasi material
• Acquisition - Akuisisi, merger
• Other - Lainnya

Bot memeriksa website IDX secara berkala. Saat ada disclosure baru dari emiten manapun, Anda langsung mendapat notifikasi.`

func formatStats(subscriberCount, disclosureCount int, interval string) string {
	return fmt.Sprintf(`📊 *Statistik Bot*

👥 Subscriber aktif: *%d*
📋 Disclosure terpantau: *%d*
⏱ Interval pemeriksaan: *%s*`, subscriberCount, disclosureCount, interval)
}
