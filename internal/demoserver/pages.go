package demoserver

// PageDefinition holds both variants of a single page.
type PageDefinition struct {
	Path        string
	Description string

	// Clean is served to visitors, and to crawlers while cloaking is off.
	Clean string

	// Injected is what a compromised site serves to search engine crawlers.
	// Pages without one look the same to everybody.
	Injected string

	// Status is the HTTP status of the clean variant. Zero means 200.
	Status int
}

// GetAllPages returns all demo page definitions.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		homePage(),
		newsPage(),
		profilePage(),
		admissionPage(),
		doorwayPage(),
	}
}

// ===== HOME PAGE =====
func homePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Beranda desa; Googlebot menerima halaman judol",
		Clean: `<!DOCTYPE html>
<html lang="id">
<head>
    <title>Desa Sukamaju - Website Resmi</title>
    <meta name="description" content="Website resmi Pemerintah Desa Sukamaju, Kabupaten Contoh">
</head>
<body>
    <h1>Selamat Datang di Desa Sukamaju</h1>
    <nav>
        <a href="/">Beranda</a> |
        <a href="/berita">Berita</a> |
        <a href="/profil">Profil Desa</a> |
        <a href="/ppdb">PPDB SD Negeri 1</a>
    </nav>
    <p>Pemerintah Desa Sukamaju melayani administrasi kependudukan, surat keterangan dan bantuan sosial.</p>
    <p>Kantor desa buka Senin sampai Jumat pukul 08.00 sampai 15.00 WIB.</p>
</body>
</html>`,
		Injected: `<!DOCTYPE html>
<html lang="id">
<head>
    <title>SLOT GACOR HARI INI - Situs Slot Online Terpercaya Maxwin</title>
    <meta name="description" content="Daftar slot gacor hari ini gampang menang, bonus new member 100%">
</head>
<body>
    <h1>Slot Gacor Hari Ini Gampang Maxwin</h1>
    <p>Situs slot online terpercaya dengan RTP live tertinggi. Daftar slot gacor sekarang dan
    nikmati bonus new member. Slot88, togel online dan judi bola tersedia 24 jam.</p>
    <p>Link alternatif slot gacor: <a href="/pengumuman/slot-gacor">Daftar Sekarang</a>
    <a href="https://slotgacor-maxwin.example/daftar">Login Slot88</a></p>
</body>
</html>`,
	}
}

// ===== NEWS PAGE =====
func newsPage() PageDefinition {
	return PageDefinition{
		Path:        "/berita",
		Description: "Halaman bersih, sama untuk semua pengunjung",
		Clean: `<!DOCTYPE html>
<html lang="id">
<head><title>Berita Desa Sukamaju</title></head>
<body>
    <h1>Berita Desa</h1>
    <article>
        <h2>Musyawarah Desa Rencana Pembangunan</h2>
        <p>Musyawarah desa membahas pembangunan jalan usaha tani dan saluran irigasi tahun depan.</p>
    </article>
    <article>
        <h2>Posyandu Balita Bulan Ini</h2>
        <p>Posyandu dilaksanakan di balai desa setiap Rabu minggu kedua.</p>
    </article>
    <a href="/">Kembali ke beranda</a>
</body>
</html>`,
	}
}

// ===== PROFILE PAGE =====
func profilePage() PageDefinition {
	return PageDefinition{
		Path:        "/profil",
		Description: "Spam judol tersembunyi dengan CSS, tanpa cloaking",
		Clean: `<!DOCTYPE html>
<html lang="id">
<head><title>Profil Desa Sukamaju</title></head>
<body>
    <h1>Profil Desa</h1>
    <p>Desa Sukamaju terletak di kaki gunung dengan luas wilayah 412 hektar dan 3.200 penduduk.</p>
    <p>Mayoritas warga bekerja sebagai petani padi dan peternak sapi perah.</p>
    <div style="display:none">
        <a href="https://gacor77.example/">slot gacor</a>
        <a href="https://togelsgp.example/">togel online</a>
        <a href="https://maxwin88.example/">situs slot maxwin</a>
    </div>
    <a href="/">Kembali ke beranda</a>
</body>
</html>`,
	}
}

// ===== ADMISSION PAGE =====
func admissionPage() PageDefinition {
	body := `
<body>
    <h1>Penerimaan Peserta Didik Baru SD Negeri 1 Sukamaju</h1>
    <p>Pendaftaran dibuka tanggal 1 sampai 30 Juni. Syarat: akta kelahiran, kartu keluarga dan pas foto.</p>
    <p>Informasi lebih lanjut hubungi tata usaha sekolah pada jam kerja.</p>
    <a href="/">Kembali ke beranda</a>
</body>
</html>`
	return PageDefinition{
		Path:        "/ppdb",
		Description: "Meta tag disusupi hanya untuk Googlebot",
		Clean: `<!DOCTYPE html>
<html lang="id">
<head>
    <title>PPDB SD Negeri 1 Sukamaju</title>
    <meta name="description" content="Informasi penerimaan peserta didik baru SD Negeri 1 Sukamaju">
</head>` + body,
		Injected: `<!DOCTYPE html>
<html lang="id">
<head>
    <title>PPDB SD Negeri 1 Sukamaju</title>
    <meta name="description" content="Slot gacor hari ini, situs judi online terpercaya bonus new member">
    <meta name="keywords" content="slot gacor, togel online, judi bola, slot88">
    <meta property="og:title" content="SLOT GACOR MAXWIN">
</head>` + body,
	}
}

// ===== DOORWAY PAGE =====
func doorwayPage() PageDefinition {
	return PageDefinition{
		Path:        "/pengumuman/slot-gacor",
		Description: "Halaman pintu masuk yang hanya ada untuk Googlebot",
		Status:      404,
		Clean: `<!DOCTYPE html>
<html lang="id">
<head><title>Halaman tidak ditemukan</title></head>
<body><h1>404</h1><p>Halaman yang Anda cari tidak ditemukan.</p><a href="/">Beranda</a></body>
</html>`,
		Injected: `<!DOCTYPE html>
<html lang="id">
<head><title>Slot Gacor Gampang Menang - Desa Sukamaju</title></head>
<body>
    <h1>Bocoran Slot Gacor Hari Ini</h1>
    <p>Pola slot gacor dan RTP live slot tertinggi. Daftar di situs judi slot online terpercaya,
    deposit pulsa tanpa potongan, jackpot maxwin setiap hari.</p>
    <a href="https://slotgacor-maxwin.example/daftar">Daftar slot gacor</a>
    <a href="https://togelsgp.example/">Togel hari ini</a>
</body>
</html>`,
	}
}
