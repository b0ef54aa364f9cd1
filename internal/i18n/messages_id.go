package i18n

// messagesID returns the Indonesian message table (default language).
func messagesID() map[string]string {
	return map[string]string{
		"answer.timeout": "Maaf, sistem sedang memproses jawaban lebih lama dari biasanya. " +
			"Silakan coba ulangi pertanyaan sebentar lagi.",
		"answer.error": "Terjadi kesalahan sistem: %s",

		"contribution.received": "Kontribusi berhasil dikirim dan menunggu review",
		"moderation.approved":   "Disetujui & indeks diperbarui",
		"moderation.rejected":   "Ditolak",
		"author.anonymous":      "Anonim",
	}
}
